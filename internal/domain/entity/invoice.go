package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago de una factura.
const (
	PaymentCash     = "efectivo"
	PaymentCard     = "tarjeta"
	PaymentTransfer = "transferencia"
	PaymentCredit   = "credito"
)

// Invoice representa la cabecera de una factura con su NCF asignado.
// El NCF se emite en la MISMA transacción que inserta la factura: si la
// factura no se guarda, el incremento de la secuencia se revierte con ella.
type Invoice struct {
	ID            string
	CompanyID     string
	CustomerID    string
	RegisterID    string // caja donde se cobró; vacío si no fue en efectivo
	NCF           string // comprobante formateado, ej: "B0200001305"
	NCFType       string
	PaymentMethod string
	Date          time.Time
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal // ITBIS
	GrandTotal    decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
