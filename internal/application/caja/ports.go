package caja

import (
	"context"

	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Toda mutación del ciclo de vida de una sesión
// (abrir, mover, cerrar, auditar) corre completa dentro de una transacción que
// primero relee el estado con la fila bloqueada.
type TxRunner interface {
	RunCaja(ctx context.Context, fn func(
		sessionRepo repository.CashSessionRepository,
		movRepo repository.CashMovementRepository,
	) error) error
}
