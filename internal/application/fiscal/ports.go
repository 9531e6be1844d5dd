package fiscal

import (
	"context"

	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el incremento de la secuencia y
// el registro del comprobante emitido se confirman o revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		seqRepo repository.FiscalSequenceRepository,
		ncfRepo repository.NCFRepository,
	) error) error
}
