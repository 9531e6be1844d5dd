package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// CashSessionRepo implementación sobre PostgreSQL (usable con pool o tx).
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

const sessionColumns = `
	id, company_id, register_id, opened_by, opening_amount, system_amount,
	declared_amount, discrepancy, state, opened_at, closed_at, closed_by,
	audited_at, audited_by, created_at, updated_at`

func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	const q = `
		INSERT INTO cash_sessions
			(id, company_id, register_id, opened_by, opening_amount, system_amount,
			 declared_amount, discrepancy, state, opened_at, closed_at, closed_by,
			 audited_at, audited_by, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())`
	_, err := r.q.Exec(ctx, q,
		s.ID, s.CompanyID, s.RegisterID, s.OpenedBy,
		s.OpeningAmount, s.SystemAmount, s.DeclaredAmount, s.Discrepancy,
		s.State, s.OpenedAt, s.ClosedAt, s.ClosedBy, s.AuditedAt, s.AuditedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// índice único parcial: una sola sesión OPEN por caja
			return domain.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("insert cash_session: %w", err)
	}
	return nil
}

func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE id = $1`
	s, err := scanSession(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash_session by id: %w", err)
	}
	return s, nil
}

// GetByIDForUpdate relee la sesión con la fila bloqueada. Toda transición de
// estado pasa por aquí: dos cierres concurrentes se serializan y el segundo ve
// el estado CLOSED que dejó el primero.
func (r *CashSessionRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE id = $1 FOR UPDATE`
	s, err := scanSession(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrContention
		}
		return nil, fmt.Errorf("get cash_session for update: %w", err)
	}
	return s, nil
}

// GetOpenByRegisterForUpdate devuelve la sesión OPEN de la caja con la fila
// bloqueada, o nil, nil si no hay ninguna. Es la guardia de "a lo sumo una
// sesión abierta por caja" y localiza la sesión a afectar al cobrar una venta.
func (r *CashSessionRepo) GetOpenByRegisterForUpdate(ctx context.Context, registerID string) (*entity.CashSession, error) {
	q := `SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE register_id = $1 AND state = 'OPEN'
		FOR UPDATE`
	s, err := scanSession(r.q.QueryRow(ctx, q, registerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrContention
		}
		return nil, fmt.Errorf("get open cash_session: %w", err)
	}
	return s, nil
}

func (r *CashSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	const q = `
		UPDATE cash_sessions
		SET system_amount = $2, declared_amount = $3, discrepancy = $4, state = $5,
		    closed_at = $6, closed_by = $7, audited_at = $8, audited_by = $9,
		    updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q,
		s.ID, s.SystemAmount, s.DeclaredAmount, s.Discrepancy, s.State,
		s.ClosedAt, s.ClosedBy, s.AuditedAt, s.AuditedBy,
	)
	if err != nil {
		return fmt.Errorf("update cash_session: %w", err)
	}
	return nil
}

func (r *CashSessionRepo) ListByRegister(ctx context.Context, registerID string, limit, offset int) ([]*entity.CashSession, error) {
	q := `SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE register_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, registerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cash_sessions: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash_session: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSession(row pgxScanner) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.RegisterID, &s.OpenedBy,
		&s.OpeningAmount, &s.SystemAmount, &s.DeclaredAmount, &s.Discrepancy,
		&s.State, &s.OpenedAt, &s.ClosedAt, &s.ClosedBy, &s.AuditedAt, &s.AuditedBy,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
