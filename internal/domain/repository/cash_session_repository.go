package repository

import (
	"context"

	"github.com/facturadom/gestion-api/internal/domain/entity"
)

// CashSessionRepository define el puerto de persistencia para sesiones de caja.
type CashSessionRepository interface {
	Create(ctx context.Context, s *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)

	// GetByIDForUpdate relee la sesión con la fila bloqueada dentro de la
	// transacción en curso. Toda transición de estado y todo registro de
	// movimiento DEBE releer el estado así: es la guardia contra la carrera de
	// estado viejo (ej: dos cierres concurrentes, solo uno gana).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.CashSession, error)

	// GetOpenByRegisterForUpdate devuelve la sesión OPEN de la caja, bloqueada,
	// o nil, nil si no hay ninguna. Garantiza "a lo sumo una sesión abierta por
	// caja" en la apertura, y localiza la sesión a afectar al cobrar una venta.
	GetOpenByRegisterForUpdate(ctx context.Context, registerID string) (*entity.CashSession, error)

	// Update persiste balance corrido y transiciones de estado.
	Update(ctx context.Context, s *entity.CashSession) error

	ListByRegister(ctx context.Context, registerID string, limit, offset int) ([]*entity.CashSession, error)
}

// CashMovementRepository define el puerto para el libro de movimientos.
// Append-only: no expone Update ni Delete.
type CashMovementRepository interface {
	Create(ctx context.Context, m *entity.CashMovement) error

	// ListBySession devuelve los movimientos en orden de inserción, para
	// re-reproducir el balance al cierre.
	ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error)
}
