package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturadom/gestion-api/internal/application/billing"
	"github.com/facturadom/gestion-api/internal/application/caja"
	"github.com/facturadom/gestion-api/internal/application/fiscal"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// Ensure TxRunner implementa los tres runners de la capa de aplicación.
var _ fiscal.TxRunner = (*TxRunner)(nil)
var _ caja.TxRunner = (*TxRunner)(nil)
var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
//
// Cada transacción arranca con un lock_timeout local: los FOR UPDATE de
// secuencias y sesiones nunca esperan indefinidamente, y el 55P03 resultante
// se traduce a ErrContention en los repositorios.
type TxRunner struct {
	pool          *pgxpool.Pool
	lockTimeoutMS int
}

// NewTxRunner construye el runner con el pool y el lock_timeout por transacción.
func NewTxRunner(pool *pgxpool.Pool, lockTimeoutMS int) *TxRunner {
	return &TxRunner{pool: pool, lockTimeoutMS: lockTimeoutMS}
}

func (r *TxRunner) begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	if r.lockTimeoutMS > 0 {
		// SET LOCAL vive solo dentro de esta transacción
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeoutMS)); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	return tx, nil
}

// Run inicia una transacción con los repositorios de emisión de NCF.
func (r *TxRunner) Run(ctx context.Context, fn func(
	seqRepo repository.FiscalSequenceRepository,
	ncfRepo repository.NCFRepository,
) error) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewFiscalSequenceRepository(tx), NewNCFRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCaja inicia una transacción con los repositorios del ciclo de caja.
func (r *TxRunner) RunCaja(ctx context.Context, fn func(
	sessionRepo repository.CashSessionRepository,
	movRepo repository.CashMovementRepository,
) error) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCashSessionRepository(tx), NewCashMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunVenta inicia una transacción con todos los repositorios del flujo de venta:
// emisión de NCF, factura y asiento en caja confirman o revierten juntos.
func (r *TxRunner) RunVenta(ctx context.Context, fn func(
	seqRepo repository.FiscalSequenceRepository,
	ncfRepo repository.NCFRepository,
	invoiceRepo repository.InvoiceRepository,
	sessionRepo repository.CashSessionRepository,
	movRepo repository.CashMovementRepository,
) error) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewFiscalSequenceRepository(tx),
		NewNCFRepository(tx),
		NewInvoiceRepository(tx),
		NewCashSessionRepository(tx),
		NewCashMovementRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
