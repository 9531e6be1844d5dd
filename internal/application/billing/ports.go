package billing

import (
	"context"

	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios
// que necesita la creación de facturas: emisión de NCF, cabecera/detalle de la
// factura y asiento en la sesión de caja. Todo confirma o revierte junto: si
// la factura no se guarda, el incremento de la secuencia se revierte con ella.
type TxRunner interface {
	RunVenta(ctx context.Context, fn func(
		seqRepo repository.FiscalSequenceRepository,
		ncfRepo repository.NCFRepository,
		invoiceRepo repository.InvoiceRepository,
		sessionRepo repository.CashSessionRepository,
		movRepo repository.CashMovementRepository,
	) error) error
}
