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

var _ repository.CashRegisterRepository = (*CashRegisterRepo)(nil)

// CashRegisterRepo implementación sobre PostgreSQL.
type CashRegisterRepo struct {
	q Querier
}

// NewCashRegisterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashRegisterRepository(q Querier) *CashRegisterRepo {
	return &CashRegisterRepo{q: q}
}

func (r *CashRegisterRepo) Create(ctx context.Context, reg *entity.CashRegister) error {
	const q = `
		INSERT INTO cash_registers (id, company_id, name, location, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.q.Exec(ctx, q, reg.ID, reg.CompanyID, reg.Name, reg.Location, reg.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate // nombre de caja repetido en la empresa
		}
		return fmt.Errorf("insert cash_register: %w", err)
	}
	return nil
}

func (r *CashRegisterRepo) GetByID(ctx context.Context, id string) (*entity.CashRegister, error) {
	const q = `
		SELECT id, company_id, name, location, is_active, created_at, updated_at
		FROM cash_registers WHERE id = $1`
	reg, err := scanRegister(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash_register by id: %w", err)
	}
	return reg, nil
}

func (r *CashRegisterRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CashRegister, error) {
	const q = `
		SELECT id, company_id, name, location, is_active, created_at, updated_at
		FROM cash_registers
		WHERE company_id = $1
		ORDER BY name`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list cash_registers: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashRegister
	for rows.Next() {
		reg, err := scanRegister(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash_register: %w", err)
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

func scanRegister(row pgxScanner) (*entity.CashRegister, error) {
	var reg entity.CashRegister
	err := row.Scan(&reg.ID, &reg.CompanyID, &reg.Name, &reg.Location, &reg.IsActive, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
