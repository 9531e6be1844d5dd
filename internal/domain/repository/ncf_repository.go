package repository

import (
	"context"

	"github.com/facturadom/gestion-api/internal/domain/entity"
)

// NCFRepository define el puerto de persistencia para comprobantes emitidos.
// Solo inserta y consulta: un NCF emitido jamás se actualiza ni se borra.
type NCFRepository interface {
	Create(ctx context.Context, n *entity.NCF) error
	GetByFormatted(ctx context.Context, companyID, formatted string) (*entity.NCF, error)
	ListBySequence(ctx context.Context, sequenceID string, limit, offset int) ([]*entity.NCF, error)
}
