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

var _ repository.NCFRepository = (*NCFRepo)(nil)

// NCFRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: los comprobantes emitidos nunca se tocan.
type NCFRepo struct {
	q Querier
}

// NewNCFRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNCFRepository(q Querier) *NCFRepo {
	return &NCFRepo{q: q}
}

// Create inserta el comprobante emitido. El constraint único sobre
// (company_id, ncf_type, value) es la última línea de defensa contra un
// número duplicado; si salta, devuelve ErrDuplicate.
func (r *NCFRepo) Create(ctx context.Context, n *entity.NCF) error {
	const q = `
		INSERT INTO ncf_issued
			(id, company_id, sequence_id, ncf_type, value, formatted, document_id, issued_by, issued_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, q,
		n.ID, n.CompanyID, n.SequenceID, n.NCFType,
		n.Value, n.Formatted, n.DocumentID, n.IssuedBy, n.IssuedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ncf: %w", err)
	}
	return nil
}

func (r *NCFRepo) GetByFormatted(ctx context.Context, companyID, formatted string) (*entity.NCF, error) {
	const q = `
		SELECT id, company_id, sequence_id, ncf_type, value, formatted, document_id, issued_by, issued_at
		FROM ncf_issued
		WHERE company_id = $1 AND formatted = $2`
	n, err := scanNCF(r.q.QueryRow(ctx, q, companyID, formatted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ncf by formatted: %w", err)
	}
	return n, nil
}

func (r *NCFRepo) ListBySequence(ctx context.Context, sequenceID string, limit, offset int) ([]*entity.NCF, error) {
	const q = `
		SELECT id, company_id, sequence_id, ncf_type, value, formatted, document_id, issued_by, issued_at
		FROM ncf_issued
		WHERE sequence_id = $1
		ORDER BY value
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, sequenceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ncf by sequence: %w", err)
	}
	defer rows.Close()
	var list []*entity.NCF
	for rows.Next() {
		n, err := scanNCF(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ncf: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func scanNCF(row pgxScanner) (*entity.NCF, error) {
	var n entity.NCF
	err := row.Scan(
		&n.ID, &n.CompanyID, &n.SequenceID, &n.NCFType,
		&n.Value, &n.Formatted, &n.DocumentID, &n.IssuedBy, &n.IssuedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
