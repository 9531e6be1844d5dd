package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturadom/gestion-api/internal/application/caja"
	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/application/fiscal"
	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// Tasa ITBIS general vigente.
var defaultITBIS = decimal.NewFromFloat(0.18)

// CreateInvoiceUseCase crea una factura con su NCF y, si el pago es en
// efectivo, asienta el cobro en la sesión de caja abierta — todo en UNA sola
// transacción. El emisor de NCF y el libro de caja participan de la misma
// transacción que inserta la factura: cualquier fallo revierte el incremento
// de la secuencia y el movimiento junto con la factura.
type CreateInvoiceUseCase struct {
	txRunner     TxRunner
	issuerUC     *fiscal.IssueNCFUseCase
	sessionUC    *caja.SessionUseCase
	customerRepo repository.CustomerRepository
	registerRepo repository.CashRegisterRepository
	invoiceRepo  repository.InvoiceRepository
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	txRunner TxRunner,
	issuerUC *fiscal.IssueNCFUseCase,
	sessionUC *caja.SessionUseCase,
	customerRepo repository.CustomerRepository,
	registerRepo repository.CashRegisterRepository,
	invoiceRepo repository.InvoiceRepository,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		txRunner:     txRunner,
		issuerUC:     issuerUC,
		sessionUC:    sessionUC,
		customerRepo: customerRepo,
		registerRepo: registerRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// CreateInvoice valida fuera de la transacción (solo lecturas) y dentro de ella
// emite el NCF, guarda cabecera y detalles y asienta el cobro en caja.
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, companyID, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.CustomerID == "" || len(in.Items) == 0 || !entity.ValidNCFType(in.NCFType) {
		return nil, domain.ErrInvalidInput
	}
	cash := in.PaymentMethod == entity.PaymentCash
	if cash && in.RegisterID == "" {
		return nil, domain.ErrInvalidInput // una venta en efectivo necesita caja
	}

	customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	// B01 exige identificar al receptor ante la DGII.
	if in.NCFType == entity.NCFTipoCreditoFiscal && customer.RNC == "" {
		return nil, domain.ErrInvalidInput
	}
	if cash {
		register, err := uc.registerRepo.GetByID(ctx, in.RegisterID)
		if err != nil {
			return nil, err
		}
		if register == nil || register.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}

	// Totales (solo cálculo, sin efectos)
	var netTotal, taxTotal decimal.Decimal
	details := make([]*entity.InvoiceDetail, 0, len(in.Items))
	for _, item := range in.Items {
		if !item.Quantity.IsPositive() || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		rate := item.TaxRate
		if rate.IsZero() {
			rate = defaultITBIS
		} else if rate.GreaterThan(decimal.NewFromInt(1)) {
			rate = rate.Div(decimal.NewFromInt(100)) // admite "18" como 18%
		}
		subtotal := item.Quantity.Mul(item.UnitPrice)
		netTotal = netTotal.Add(subtotal)
		taxTotal = taxTotal.Add(subtotal.Mul(rate))
		details = append(details, &entity.InvoiceDetail{
			ID:          uuid.New().String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     rate,
			Subtotal:    subtotal,
		})
	}
	grandTotal := netTotal.Add(taxTotal)

	now := time.Now()
	invoiceID := uuid.New().String()
	inv := &entity.Invoice{
		ID:            invoiceID,
		CompanyID:     companyID,
		CustomerID:    in.CustomerID,
		RegisterID:    in.RegisterID,
		NCFType:       in.NCFType,
		PaymentMethod: in.PaymentMethod,
		Date:          now,
		NetTotal:      netTotal,
		TaxTotal:      taxTotal,
		GrandTotal:    grandTotal,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, d := range details {
		d.InvoiceID = invoiceID
	}

	var issued *entity.NCF
	var seqSnapshot *entity.FiscalSequence
	err = uc.txRunner.RunVenta(ctx, func(
		seqRepo repository.FiscalSequenceRepository,
		ncfRepo repository.NCFRepository,
		invoiceRepo repository.InvoiceRepository,
		sessionRepo repository.CashSessionRepository,
		movRepo repository.CashMovementRepository,
	) error {
		// 1) NCF: misma transacción que la factura, nunca un commit adelantado
		n, seq, err := uc.issuerUC.IssueInTx(ctx, seqRepo, ncfRepo, companyID, userID, in.NCFType, invoiceID, now)
		if err != nil {
			return err
		}
		issued, seqSnapshot = n, seq
		inv.NCF = n.Formatted

		// 2) Cabecera y detalles
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, d := range details {
			if err := invoiceRepo.CreateDetail(ctx, d); err != nil {
				return err
			}
		}

		// 3) Cobro en efectivo contra la sesión abierta de la caja
		if cash {
			return uc.sessionUC.RegisterSaleInTx(ctx, sessionRepo, movRepo,
				companyID, userID, in.RegisterID, grandTotal, invoiceID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.issuerUC.MaybeNotifyLow(issued, seqSnapshot)
	return uc.toResponse(inv, customer.Name, details), nil
}

// GetInvoice obtiene una factura por ID con su detalle completo.
func (uc *CreateInvoiceUseCase) GetInvoice(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := uc.customerRepo.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, err
	}
	customerName := ""
	if customer != nil {
		customerName = customer.Name
	}
	return uc.toResponse(inv, customerName, details), nil
}

func (uc *CreateInvoiceUseCase) toResponse(inv *entity.Invoice, customerName string, details []*entity.InvoiceDetail) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		CustomerID:    inv.CustomerID,
		CustomerName:  customerName,
		NCF:           inv.NCF,
		NCFType:       inv.NCFType,
		PaymentMethod: inv.PaymentMethod,
		Date:          inv.Date.Format("2006-01-02"),
		NetTotal:      inv.NetTotal,
		TaxTotal:      inv.TaxTotal,
		GrandTotal:    inv.GrandTotal,
		Details:       make([]dto.InvoiceDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.InvoiceDetailResponse{
			ID:          d.ID,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			TaxRate:     d.TaxRate,
			Subtotal:    d.Subtotal,
		})
	}
	return resp
}
