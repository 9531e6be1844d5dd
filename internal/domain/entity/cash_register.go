package entity

import "time"

// CashRegister representa una caja física (punto de cobro) de una empresa.
// Una caja tiene a lo sumo UNA sesión abierta a la vez; esa exclusividad
// se garantiza en la apertura de sesión, no aquí.
type CashRegister struct {
	ID        string
	CompanyID string
	Name      string // ej: "Caja 1", "Caja mostrador"
	Location  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
