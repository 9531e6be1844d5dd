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

var _ repository.FiscalSequenceRepository = (*FiscalSequenceRepo)(nil)

// FiscalSequenceRepo implementación sobre PostgreSQL (usable con pool o tx).
type FiscalSequenceRepo struct {
	q Querier
}

// NewFiscalSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalSequenceRepository(q Querier) *FiscalSequenceRepo {
	return &FiscalSequenceRepo{q: q}
}

func (r *FiscalSequenceRepo) Create(ctx context.Context, seq *entity.FiscalSequence) error {
	const q = `
		INSERT INTO fiscal_sequences
			(id, company_id, ncf_type, range_start, range_end, current_value, expires_at, is_active, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, q,
		seq.ID, seq.CompanyID, seq.NCFType,
		seq.RangeStart, seq.RangeEnd, seq.CurrentValue,
		seq.ExpiresAt, seq.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert fiscal_sequence: %w", err)
	}
	return nil
}

func (r *FiscalSequenceRepo) GetByID(ctx context.Context, id string) (*entity.FiscalSequence, error) {
	const q = `
		SELECT id, company_id, ncf_type, range_start, range_end, current_value,
		       expires_at, is_active, created_at, updated_at
		FROM fiscal_sequences WHERE id = $1`
	seq, err := scanSequence(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal_sequence by id: %w", err)
	}
	return seq, nil
}

// GetActiveForUpdate es la consulta crítica del emisor de NCF. Bloquea la fila
// de la secuencia activa con FOR UPDATE: los incrementos concurrentes sobre el
// mismo rango se serializan esperando el lock, con la espera acotada por el
// lock_timeout de la transacción (55P03 al vencer se traduce a ErrContention).
// Devuelve nil, nil si no hay secuencia activa vigente.
func (r *FiscalSequenceRepo) GetActiveForUpdate(ctx context.Context, companyID, ncfType string) (*entity.FiscalSequence, error) {
	const q = `
		SELECT id, company_id, ncf_type, range_start, range_end, current_value,
		       expires_at, is_active, created_at, updated_at
		FROM fiscal_sequences
		WHERE company_id = $1
		  AND ncf_type   = $2
		  AND is_active  = true
		  AND expires_at > now()
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE`
	seq, err := scanSequence(r.q.QueryRow(ctx, q, companyID, ncfType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrContention
		}
		return nil, fmt.Errorf("get active fiscal_sequence: %w", err)
	}
	return seq, nil
}

// SetCurrentValue escribe el nuevo último-emitido. El WHERE defensivo sobre
// range_end hace imposible persistir un valor fuera del rango autorizado.
func (r *FiscalSequenceRepo) SetCurrentValue(ctx context.Context, id string, value int64) error {
	const q = `
		UPDATE fiscal_sequences
		SET current_value = $2, updated_at = now()
		WHERE id = $1 AND $2 <= range_end`
	tag, err := r.q.Exec(ctx, q, id, value)
	if err != nil {
		return fmt.Errorf("update fiscal_sequence current_value: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSequenceExhausted
	}
	return nil
}

func (r *FiscalSequenceRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.FiscalSequence, error) {
	const q = `
		SELECT id, company_id, ncf_type, range_start, range_end, current_value,
		       expires_at, is_active, created_at, updated_at
		FROM fiscal_sequences
		WHERE company_id = $1
		ORDER BY ncf_type, created_at`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list fiscal_sequences: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalSequence
	for rows.Next() {
		seq, err := scanSequence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal_sequence: %w", err)
		}
		list = append(list, seq)
	}
	return list, rows.Err()
}

func scanSequence(row pgxScanner) (*entity.FiscalSequence, error) {
	var seq entity.FiscalSequence
	err := row.Scan(
		&seq.ID, &seq.CompanyID, &seq.NCFType,
		&seq.RangeStart, &seq.RangeEnd, &seq.CurrentValue,
		&seq.ExpiresAt, &seq.IsActive, &seq.CreatedAt, &seq.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seq, nil
}
