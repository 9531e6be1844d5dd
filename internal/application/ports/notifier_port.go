package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// DescuadreEvent se emite cuando una sesión cierra con descuadre distinto de cero.
type DescuadreEvent struct {
	CompanyID     string          `json:"company_id"`
	SessionID     string          `json:"session_id"`
	RegisterID    string          `json:"register_id"`
	SystemAmount  decimal.Decimal `json:"system_amount"`
	Declared      decimal.Decimal `json:"declared_amount"`
	Discrepancy   decimal.Decimal `json:"discrepancy"`
	Clasificacion string          `json:"clasificacion"`
	ClosedBy      string          `json:"closed_by"`
}

// SequenceLowEvent se emite cuando a una secuencia NCF le quedan pocos números.
type SequenceLowEvent struct {
	CompanyID  string `json:"company_id"`
	SequenceID string `json:"sequence_id"`
	NCFType    string `json:"ncf_type"`
	Remaining  int64  `json:"remaining"`
	RangeEnd   int64  `json:"range_end"`
}

// Notifier despacha avisos fuera del camino de fallo del negocio: se invoca
// DESPUÉS del commit y su error jamás revierte la transacción que lo originó.
// Las implementaciones deben ser seguras para llamar desde goroutines.
type Notifier interface {
	NotifyDescuadre(ctx context.Context, ev DescuadreEvent)
	NotifySequenceLow(ctx context.Context, ev SequenceLowEvent)
}

// NopNotifier descarta todos los avisos. Útil en tests y cuando no hay webhook configurado.
type NopNotifier struct{}

func (NopNotifier) NotifyDescuadre(context.Context, DescuadreEvent)     {}
func (NopNotifier) NotifySequenceLow(context.Context, SequenceLowEvent) {}
