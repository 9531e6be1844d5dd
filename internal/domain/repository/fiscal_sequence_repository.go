package repository

import (
	"context"

	"github.com/facturadom/gestion-api/internal/domain/entity"
)

// FiscalSequenceRepository define el puerto de persistencia para secuencias NCF.
type FiscalSequenceRepository interface {
	Create(ctx context.Context, seq *entity.FiscalSequence) error
	GetByID(ctx context.Context, id string) (*entity.FiscalSequence, error)

	// GetActiveForUpdate devuelve la secuencia activa y vigente para la empresa
	// y tipo de comprobante, con la fila BLOQUEADA (SELECT ... FOR UPDATE)
	// dentro de la transacción en curso. Es la consulta crítica del emisor de NCF:
	// serializa los incrementos concurrentes sobre el mismo rango; la espera por
	// el lock está acotada por el lock_timeout de la transacción.
	// Devuelve nil, nil si no hay secuencia activa; domain.ErrContention si la
	// espera venció sin obtener la fila.
	GetActiveForUpdate(ctx context.Context, companyID, ncfType string) (*entity.FiscalSequence, error)

	// SetCurrentValue escribe el nuevo último-emitido. Solo debe llamarse con la
	// fila previamente bloqueada por GetActiveForUpdate en la misma transacción.
	SetCurrentValue(ctx context.Context, id string, value int64) error

	// ListByCompany lista todas las secuencias de una empresa (activas e inactivas).
	ListByCompany(ctx context.Context, companyID string) ([]*entity.FiscalSequence, error)
}
