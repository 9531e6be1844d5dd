package entity

import "time"

// Company representa una empresa/tenant del sistema (multi-tenant, enfoque República Dominicana).
// Todo dato de negocio cuelga de una Company; nunca es visible para otra.
type Company struct {
	ID        string
	Name      string
	RNC       string // Registro Nacional de Contribuyentes (DGII)
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
