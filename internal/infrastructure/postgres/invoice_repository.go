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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación sobre PostgreSQL (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	const q = `
		INSERT INTO invoices
			(id, company_id, customer_id, register_id, ncf, ncf_type, payment_method,
			 date, net_total, tax_total, grand_total, created_by, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())`
	_, err := r.q.Exec(ctx, q,
		inv.ID, inv.CompanyID, inv.CustomerID, nullIfEmpty(inv.RegisterID),
		inv.NCF, inv.NCFType, inv.PaymentMethod, inv.Date,
		inv.NetTotal, inv.TaxTotal, inv.GrandTotal, inv.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate // NCF repetido
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) CreateDetail(ctx context.Context, d *entity.InvoiceDetail) error {
	const q = `
		INSERT INTO invoice_details
			(id, invoice_id, description, quantity, unit_price, tax_rate, subtotal)
		VALUES
			($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, q, d.ID, d.InvoiceID, d.Description, d.Quantity, d.UnitPrice, d.TaxRate, d.Subtotal)
	if err != nil {
		return fmt.Errorf("insert invoice_detail: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	const q = `
		SELECT id, company_id, customer_id, COALESCE(register_id, ''), ncf, ncf_type,
		       payment_method, date, net_total, tax_total, grand_total, created_by,
		       created_at, updated_at
		FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	const q = `
		SELECT id, invoice_id, description, quantity, unit_price, tax_rate, subtotal
		FROM invoice_details
		WHERE invoice_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, q, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice_details: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		err := rows.Scan(&d.ID, &d.InvoiceID, &d.Description, &d.Quantity, &d.UnitPrice, &d.TaxRate, &d.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("scan invoice_detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	const q = `
		SELECT id, company_id, customer_id, COALESCE(register_id, ''), ncf, ncf_type,
		       payment_method, date, net_total, tax_total, grand_total, created_by,
		       created_at, updated_at
		FROM invoices
		WHERE company_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// nullIfEmpty mapea "" a NULL para columnas UUID opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.RegisterID,
		&inv.NCF, &inv.NCFType, &inv.PaymentMethod, &inv.Date,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
