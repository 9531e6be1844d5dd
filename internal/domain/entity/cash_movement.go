package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de caja.
const (
	MovementOpening           = "OPENING"            // apertura (monto inicial)
	MovementSale              = "SALE"               // cobro de una venta
	MovementManualDeposit     = "MANUAL_DEPOSIT"     // ingreso manual de efectivo
	MovementManualWithdrawal  = "MANUAL_WITHDRAWAL"  // retiro manual de efectivo
	MovementMinorExpense      = "MINOR_EXPENSE"      // gasto menor pagado desde la caja
	MovementClosingWithdrawal = "CLOSING_WITHDRAWAL" // retiro del conteo al cerrar (política de reseteo)
)

// CashMovement es una entrada inmutable del libro de caja: pertenece a exactamente
// una sesión y jamás se modifica ni se borra. Las anulaciones se expresan como
// movimientos inversos, no como borrados.
//
// Convención de signo: depósitos y ventas positivos; retiros y gastos negativos.
// El signo ya viene aplicado en Amount al persistir.
type CashMovement struct {
	ID        string
	CompanyID string
	SessionID string
	Type      string
	Amount    decimal.Decimal
	Reference string // documento externo que originó el movimiento (ej: ID de factura)
	Concept   string
	CreatedBy string
	CreatedAt time.Time
}

// ValidMovementType verifica los tipos registrables vía API. OPENING y
// CLOSING_WITHDRAWAL los genera el propio ciclo de vida de la sesión.
func ValidMovementType(t string) bool {
	switch t {
	case MovementSale, MovementManualDeposit, MovementManualWithdrawal, MovementMinorExpense:
		return true
	}
	return false
}

// MovementSign devuelve el signo que corresponde al tipo: +1 entradas, -1 salidas.
func MovementSign(t string) int {
	switch t {
	case MovementManualWithdrawal, MovementMinorExpense, MovementClosingWithdrawal:
		return -1
	default:
		return 1
	}
}
