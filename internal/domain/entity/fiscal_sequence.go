package entity

import "time"

// Tipos de comprobante fiscal según la DGII (serie B).
const (
	NCFTipoCreditoFiscal   = "01" // B01: válido para crédito fiscal
	NCFTipoConsumo         = "02" // B02: consumidor final
	NCFTipoNotaDebito      = "03" // B03
	NCFTipoNotaCredito     = "04" // B04
	NCFTipoRegimenEspecial = "14" // B14
	NCFTipoGubernamental   = "15" // B15
)

// FiscalSequence representa un rango de numeración de comprobantes (NCF)
// autorizado por la DGII para una empresa y un tipo de comprobante.
//
// CurrentValue es el último número emitido dentro del rango. En un rango
// virgen vale RangeStart-1 (aún no se emitió nada); a partir de ahí solo lo
// muta el emisor de NCF, siempre dentro de una transacción con la fila
// bloqueada. Cuando CurrentValue == RangeEnd la secuencia está agotada y
// ninguna emisión posterior puede mutarla. Las secuencias nunca se borran:
// son el respaldo de auditoría de la numeración.
type FiscalSequence struct {
	ID           string
	CompanyID    string
	NCFType      string // ver constantes NCFTipo*
	RangeStart   int64
	RangeEnd     int64
	CurrentValue int64
	ExpiresAt    time.Time // fecha de vencimiento de la autorización DGII
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Exhausted indica si la secuencia ya no puede emitir más números.
func (s *FiscalSequence) Exhausted() bool {
	return s.CurrentValue >= s.RangeEnd
}

// Remaining devuelve cuántos números quedan por emitir en el rango.
func (s *FiscalSequence) Remaining() int64 {
	if s.Exhausted() {
		return 0
	}
	return s.RangeEnd - s.CurrentValue
}

// ValidNCFType verifica que el tipo de comprobante sea uno de los soportados.
func ValidNCFType(t string) bool {
	switch t {
	case NCFTipoCreditoFiscal, NCFTipoConsumo, NCFTipoNotaDebito,
		NCFTipoNotaCredito, NCFTipoRegimenEspecial, NCFTipoGubernamental:
		return true
	}
	return false
}
