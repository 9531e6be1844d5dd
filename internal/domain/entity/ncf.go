package entity

import "time"

// NCF representa un número de comprobante fiscal ya emitido. Es inmutable:
// una vez insertado nunca se actualiza ni se borra. La unicidad global por
// (CompanyID, NCFType, Value) la garantiza un constraint único en la tabla.
type NCF struct {
	ID         string
	CompanyID  string
	SequenceID string
	NCFType    string
	Value      int64  // valor numérico dentro del rango
	Formatted  string // ej: "B0100000421"
	DocumentID string // documento que consumió el número (factura, nota, etc.)
	IssuedBy   string
	IssuedAt   time.Time
}
