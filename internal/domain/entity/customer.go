package entity

import "time"

// Customer representa un cliente de una empresa.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	RNC       string // RNC o cédula; requerido para NCF de crédito fiscal (B01)
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
