package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una sesión de caja. El ciclo es OPEN → CLOSED → AUDITED,
// sin saltos y sin reapertura.
const (
	SessionOpen    = "OPEN"
	SessionClosed  = "CLOSED"
	SessionAudited = "AUDITED"
)

// CashSession representa el ciclo de vida de una caja entre apertura y arqueo.
//
// SystemAmount es el balance corrido calculado por el sistema (suma con signo
// de todos los movimientos, incluida la apertura). Se actualiza en la misma
// transacción de cada movimiento y al cierre se recalcula re-reproduciendo el
// libro completo: nunca es un campo editable por el usuario.
type CashSession struct {
	ID             string
	CompanyID      string
	RegisterID     string
	OpenedBy       string
	OpeningAmount  decimal.Decimal
	SystemAmount   decimal.Decimal  // balance corrido derivado del libro
	DeclaredAmount *decimal.Decimal // monto contado por el cajero; nil hasta el cierre
	Discrepancy    *decimal.Decimal // DeclaredAmount - SystemAmount; nil hasta el cierre
	State          string           // OPEN, CLOSED, AUDITED
	OpenedAt       time.Time
	ClosedAt       *time.Time
	ClosedBy       *string
	AuditedAt      *time.Time
	AuditedBy      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
