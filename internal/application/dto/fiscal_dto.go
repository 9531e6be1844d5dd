package dto

import "time"

// CreateSequenceRequest alta de una secuencia NCF (importación de la autorización DGII).
// CurrentValue es opcional: en un rango virgen se omite y el primer NCF emitido
// será RangeStart; en una importación de rango en uso indica el último emitido.
type CreateSequenceRequest struct {
	NCFType      string    `json:"ncf_type"      validate:"required,len=2"`
	RangeStart   int64     `json:"range_start"   validate:"required,min=1"`
	RangeEnd     int64     `json:"range_end"     validate:"required,gtfield=RangeStart"`
	CurrentValue *int64    `json:"current_value"`
	ExpiresAt    time.Time `json:"expires_at"    validate:"required"`
}

// SequenceResponse estado de una secuencia.
type SequenceResponse struct {
	ID           string `json:"id"`
	NCFType      string `json:"ncf_type"`
	RangeStart   int64  `json:"range_start"`
	RangeEnd     int64  `json:"range_end"`
	CurrentValue int64  `json:"current_value"`
	Remaining    int64  `json:"remaining"`
	ExpiresAt    string `json:"expires_at"`
	IsActive     bool   `json:"is_active"`
}

// IssueNCFRequest emisión directa de un comprobante (sin factura asociada,
// ej: numerar un documento externo).
type IssueNCFRequest struct {
	NCFType    string `json:"ncf_type"    validate:"required,len=2"`
	DocumentID string `json:"document_id" validate:"required"`
}

// NCFResponse comprobante emitido.
type NCFResponse struct {
	NCF        string `json:"ncf"`
	NCFType    string `json:"ncf_type"`
	Value      int64  `json:"value"`
	DocumentID string `json:"document_id"`
	IssuedAt   string `json:"issued_at"`
	Remaining  int64  `json:"remaining"` // números que quedan en la secuencia
}
