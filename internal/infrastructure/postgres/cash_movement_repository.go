package postgres

import (
	"context"
	"fmt"

	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

var _ repository.CashMovementRepository = (*CashMovementRepo)(nil)

// CashMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// El libro es append-only: no hay UPDATE ni DELETE sobre esta tabla.
type CashMovementRepo struct {
	q Querier
}

// NewCashMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashMovementRepository(q Querier) *CashMovementRepo {
	return &CashMovementRepo{q: q}
}

func (r *CashMovementRepo) Create(ctx context.Context, m *entity.CashMovement) error {
	const q = `
		INSERT INTO cash_movements
			(id, company_id, session_id, type, amount, reference, concept, created_by, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, q,
		m.ID, m.CompanyID, m.SessionID, m.Type,
		m.Amount, m.Reference, m.Concept, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash_movement: %w", err)
	}
	return nil
}

// ListBySession devuelve el libro completo en orden de inserción: es la fuente
// del balance re-reproducido al cierre, no puede paginarse.
func (r *CashMovementRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	const q = `
		SELECT id, company_id, session_id, type, amount, reference, concept, created_by, created_at
		FROM cash_movements
		WHERE session_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash_movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		err := rows.Scan(
			&m.ID, &m.CompanyID, &m.SessionID, &m.Type,
			&m.Amount, &m.Reference, &m.Concept, &m.CreatedBy, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cash_movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
