package dto

import "github.com/shopspring/decimal"

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"    validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"  validate:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // fracción; vacío = ITBIS 18%
}

// CreateInvoiceRequest creación de factura con emisión de NCF.
// RegisterID es obligatorio cuando el pago es en efectivo: la venta se asienta
// en la sesión abierta de esa caja.
type CreateInvoiceRequest struct {
	CustomerID    string               `json:"customer_id"    validate:"required,uuid"`
	NCFType       string               `json:"ncf_type"       validate:"required,len=2"`
	PaymentMethod string               `json:"payment_method" validate:"required,oneof=efectivo tarjeta transferencia credito"`
	RegisterID    string               `json:"register_id"    validate:"omitempty,uuid"`
	Items         []InvoiceItemRequest `json:"items"          validate:"required,min=1,dive"`
}

// InvoiceDetailResponse línea en respuestas.
type InvoiceDetailResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse factura con NCF asignado.
type InvoiceResponse struct {
	ID            string                  `json:"id"`
	CustomerID    string                  `json:"customer_id"`
	CustomerName  string                  `json:"customer_name,omitempty"`
	NCF           string                  `json:"ncf"`
	NCFType       string                  `json:"ncf_type"`
	PaymentMethod string                  `json:"payment_method"`
	Date          string                  `json:"date"`
	NetTotal      decimal.Decimal         `json:"net_total"`
	TaxTotal      decimal.Decimal         `json:"tax_total"`
	GrandTotal    decimal.Decimal         `json:"grand_total"`
	Details       []InvoiceDetailResponse `json:"details"`
}

// CreateCustomerRequest alta de cliente.
type CreateCustomerRequest struct {
	Name    string `json:"name"  validate:"required"`
	RNC     string `json:"rnc"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	RNC     string `json:"rnc,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}
