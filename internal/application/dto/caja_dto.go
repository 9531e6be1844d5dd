package dto

import "github.com/shopspring/decimal"

// OpenSessionRequest apertura de sesión de caja.
type OpenSessionRequest struct {
	RegisterID    string          `json:"register_id"    validate:"required,uuid"`
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
}

// RegisterCashMovementRequest movimiento manual sobre la sesión.
// Monto siempre positivo; el caso de uso aplica el signo según el tipo.
type RegisterCashMovementRequest struct {
	Type      string          `json:"type"      validate:"required,oneof=SALE MANUAL_DEPOSIT MANUAL_WITHDRAWAL MINOR_EXPENSE"`
	Amount    decimal.Decimal `json:"amount"    validate:"required"`
	Reference string          `json:"reference"`
	Concept   string          `json:"concept"   validate:"omitempty,min=3"`
}

// CloseSessionRequest cierre con el monto contado por el cajero.
type CloseSessionRequest struct {
	DeclaredAmount decimal.Decimal `json:"declared_amount" validate:"min=0"`
}

// CashMovementResponse entrada del libro de caja.
type CashMovementResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	Concept   string          `json:"concept,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

// SessionResponse estado de una sesión de caja.
type SessionResponse struct {
	ID             string           `json:"id"`
	RegisterID     string           `json:"register_id"`
	State          string           `json:"state"`
	OpenedBy       string           `json:"opened_by"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	SystemAmount   decimal.Decimal  `json:"system_amount"`
	DeclaredAmount *decimal.Decimal `json:"declared_amount,omitempty"`
	Discrepancy    *decimal.Decimal `json:"discrepancy,omitempty"`
	Clasificacion  string           `json:"clasificacion,omitempty"` // normal | advertencia | critico
	OpenedAt       string           `json:"opened_at"`
	ClosedAt       *string          `json:"closed_at,omitempty"`
	AuditedAt      *string          `json:"audited_at,omitempty"`

	Movements []CashMovementResponse `json:"movements,omitempty"`
}
