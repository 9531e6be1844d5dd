package entity

import "github.com/shopspring/decimal"

// InvoiceDetail representa una línea de factura.
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // fracción, ej: 0.18 para ITBIS 18%
	Subtotal    decimal.Decimal // Quantity * UnitPrice, sin impuesto
}
