package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturadom/gestion-api/internal/application/billing"
	"github.com/facturadom/gestion-api/internal/application/caja"
	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/application/fiscal"
	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store transaccional en memoria para el flujo completo de venta. Un mutex
// serializa las "transacciones" y un snapshot revierte TODO lo escrito si el
// callback falla: es la semántica que el caso de uso exige de la persistencia.
// ──────────────────────────────────────────────────────────────────────────────

type ventaStore struct {
	mu       sync.Mutex
	seqs     map[string]*entity.FiscalSequence
	issued   []*entity.NCF
	invoices map[string]*entity.Invoice
	details  []*entity.InvoiceDetail
	sessions map[string]*entity.CashSession
	movs     []*entity.CashMovement

	failInvoiceInsert bool // inyección de fallo para probar el rollback
}

func newVentaStore() *ventaStore {
	return &ventaStore{
		seqs:     make(map[string]*entity.FiscalSequence),
		invoices: make(map[string]*entity.Invoice),
		sessions: make(map[string]*entity.CashSession),
	}
}

type snapshot struct {
	seqs     map[string]entity.FiscalSequence
	issued   int
	invoices map[string]entity.Invoice
	details  int
	sessions map[string]entity.CashSession
	movs     int
}

func (s *ventaStore) snapshot() snapshot {
	snap := snapshot{
		seqs:     make(map[string]entity.FiscalSequence, len(s.seqs)),
		issued:   len(s.issued),
		invoices: make(map[string]entity.Invoice, len(s.invoices)),
		details:  len(s.details),
		sessions: make(map[string]entity.CashSession, len(s.sessions)),
		movs:     len(s.movs),
	}
	for id, v := range s.seqs {
		snap.seqs[id] = *v
	}
	for id, v := range s.invoices {
		snap.invoices[id] = *v
	}
	for id, v := range s.sessions {
		snap.sessions[id] = *v
	}
	return snap
}

func (s *ventaStore) restore(snap snapshot) {
	s.seqs = make(map[string]*entity.FiscalSequence, len(snap.seqs))
	for id := range snap.seqs {
		cp := snap.seqs[id]
		s.seqs[id] = &cp
	}
	s.issued = s.issued[:snap.issued]
	s.invoices = make(map[string]*entity.Invoice, len(snap.invoices))
	for id := range snap.invoices {
		cp := snap.invoices[id]
		s.invoices[id] = &cp
	}
	s.details = s.details[:snap.details]
	s.sessions = make(map[string]*entity.CashSession, len(snap.sessions))
	for id := range snap.sessions {
		cp := snap.sessions[id]
		s.sessions[id] = &cp
	}
	s.movs = s.movs[:snap.movs]
}

type ventaTxRunner struct{ store *ventaStore }

func (r *ventaTxRunner) RunVenta(ctx context.Context, fn func(
	repository.FiscalSequenceRepository,
	repository.NCFRepository,
	repository.InvoiceRepository,
	repository.CashSessionRepository,
	repository.CashMovementRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(
		&vSeqRepo{store: r.store}, &vNCFRepo{store: r.store},
		&vInvoiceRepo{store: r.store}, &vSessionRepo{store: r.store}, &vMovRepo{store: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

// también sirve para el TxRunner de caja (abrir la sesión del fixture)
func (r *ventaTxRunner) RunCaja(ctx context.Context, fn func(
	repository.CashSessionRepository,
	repository.CashMovementRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	if err := fn(&vSessionRepo{store: r.store}, &vMovRepo{store: r.store}); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type vSeqRepo struct{ store *ventaStore }

func (f *vSeqRepo) Create(ctx context.Context, seq *entity.FiscalSequence) error {
	cp := *seq
	f.store.seqs[seq.ID] = &cp
	return nil
}
func (f *vSeqRepo) GetByID(ctx context.Context, id string) (*entity.FiscalSequence, error) {
	if s, ok := f.store.seqs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}
func (f *vSeqRepo) GetActiveForUpdate(ctx context.Context, companyID, ncfType string) (*entity.FiscalSequence, error) {
	for _, s := range f.store.seqs {
		if s.CompanyID == companyID && s.NCFType == ncfType && s.IsActive && s.ExpiresAt.After(time.Now()) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}
func (f *vSeqRepo) SetCurrentValue(ctx context.Context, id string, value int64) error {
	f.store.seqs[id].CurrentValue = value
	return nil
}
func (f *vSeqRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.FiscalSequence, error) {
	return nil, nil
}

type vNCFRepo struct{ store *ventaStore }

func (f *vNCFRepo) Create(ctx context.Context, n *entity.NCF) error {
	cp := *n
	f.store.issued = append(f.store.issued, &cp)
	return nil
}
func (f *vNCFRepo) GetByFormatted(ctx context.Context, companyID, formatted string) (*entity.NCF, error) {
	return nil, nil
}
func (f *vNCFRepo) ListBySequence(ctx context.Context, sequenceID string, limit, offset int) ([]*entity.NCF, error) {
	return nil, nil
}

type vInvoiceRepo struct{ store *ventaStore }

func (f *vInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if f.store.failInvoiceInsert {
		return errors.New("insert invoice: conexión perdida")
	}
	cp := *inv
	f.store.invoices[inv.ID] = &cp
	return nil
}
func (f *vInvoiceRepo) CreateDetail(ctx context.Context, d *entity.InvoiceDetail) error {
	cp := *d
	f.store.details = append(f.store.details, &cp)
	return nil
}
func (f *vInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if inv, ok := f.store.invoices[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}
func (f *vInvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	var out []*entity.InvoiceDetail
	for _, d := range f.store.details {
		if d.InvoiceID == invoiceID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}
func (f *vInvoiceRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	return nil, nil
}

type vSessionRepo struct{ store *ventaStore }

func (f *vSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	cp := *s
	f.store.sessions[s.ID] = &cp
	return nil
}
func (f *vSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	if s, ok := f.store.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}
func (f *vSessionRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return f.GetByID(ctx, id)
}
func (f *vSessionRepo) GetOpenByRegisterForUpdate(ctx context.Context, registerID string) (*entity.CashSession, error) {
	for _, s := range f.store.sessions {
		if s.RegisterID == registerID && s.State == entity.SessionOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}
func (f *vSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	cp := *s
	f.store.sessions[s.ID] = &cp
	return nil
}
func (f *vSessionRepo) ListByRegister(ctx context.Context, registerID string, limit, offset int) ([]*entity.CashSession, error) {
	return nil, nil
}

type vMovRepo struct{ store *ventaStore }

func (f *vMovRepo) Create(ctx context.Context, m *entity.CashMovement) error {
	cp := *m
	f.store.movs = append(f.store.movs, &cp)
	return nil
}
func (f *vMovRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	var out []*entity.CashMovement
	for _, m := range f.store.movs {
		if m.SessionID == sessionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type vRegisterRepo struct {
	registers map[string]*entity.CashRegister
}

func (f *vRegisterRepo) Create(ctx context.Context, r *entity.CashRegister) error { return nil }
func (f *vRegisterRepo) GetByID(ctx context.Context, id string) (*entity.CashRegister, error) {
	if r, ok := f.registers[id]; ok {
		return r, nil
	}
	return nil, nil
}
func (f *vRegisterRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CashRegister, error) {
	return nil, nil
}

type vCustomerRepo struct {
	customers map[string]*entity.Customer
	err       error // fuerza fallo de lectura
}

func (f *vCustomerRepo) Create(ctx context.Context, c *entity.Customer) error { return nil }
func (f *vCustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, nil
}
func (f *vCustomerRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID  = "11111111-1111-1111-1111-111111111111"
	userID     = "22222222-2222-2222-2222-222222222222"
	registerID = "44444444-4444-4444-4444-444444444444"
	customerID = "66666666-6666-6666-6666-666666666666"
)

type ventaFixture struct {
	store *ventaStore
	uc    *billing.CreateInvoiceUseCase
	caja  *caja.SessionUseCase
}

func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	store := newVentaStore()
	store.seqs["seq-b02"] = &entity.FiscalSequence{
		ID: "seq-b02", CompanyID: companyID, NCFType: entity.NCFTipoConsumo,
		RangeStart: 1, RangeEnd: 99_999_999, CurrentValue: 1304,
		ExpiresAt: time.Now().Add(365 * 24 * time.Hour), IsActive: true,
	}
	runner := &ventaTxRunner{store: store}
	registers := &vRegisterRepo{registers: map[string]*entity.CashRegister{
		registerID: {ID: registerID, CompanyID: companyID, Name: "Caja 1", IsActive: true},
	}}
	customers := &vCustomerRepo{customers: map[string]*entity.Customer{
		customerID: {ID: customerID, CompanyID: companyID, Name: "Colmado El Vecino"},
	}}
	issuer := fiscal.NewIssueNCFUseCase(nil, nil, 0) // solo se usa IssueInTx/MaybeNotifyLow
	sessions := caja.NewSessionUseCase(runner, registers, &vSessionRepo{store: store}, &vMovRepo{store: store}, nil, false)
	uc := billing.NewCreateInvoiceUseCase(runner, issuer, sessions, customers, registers, &vInvoiceRepo{store: store})
	return &ventaFixture{store: store, uc: uc, caja: sessions}
}

func (fx *ventaFixture) openSession(t *testing.T, opening float64) {
	t.Helper()
	_, err := fx.caja.Open(context.Background(), companyID, userID, dto.OpenSessionRequest{
		RegisterID:    registerID,
		OpeningAmount: decimal.NewFromFloat(opening),
	})
	require.NoError(t, err)
}

func invoiceReq(payment string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		CustomerID:    customerID,
		NCFType:       entity.NCFTipoConsumo,
		PaymentMethod: payment,
		RegisterID:    registerID,
		Items: []dto.InvoiceItemRequest{
			{Description: "Servicio técnico", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
		},
	}
}

// Venta en efectivo: NCF emitido, factura guardada y cobro asentado en la
// sesión abierta, todo en la misma transacción.
func TestCreateInvoice_EfectivoAsientaEnCaja(t *testing.T) {
	fx := newVentaFixture(t)
	fx.openSession(t, 500)

	resp, err := fx.uc.CreateInvoice(context.Background(), companyID, userID, invoiceReq(entity.PaymentCash))
	require.NoError(t, err)

	assert.Equal(t, "B0200001305", resp.NCF)
	assert.True(t, resp.NetTotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, resp.TaxTotal.Equal(decimal.NewFromInt(180)), "ITBIS 18%% por defecto")
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(1180)))

	assert.Equal(t, int64(1305), fx.store.seqs["seq-b02"].CurrentValue)
	require.Len(t, fx.store.issued, 1)
	assert.Equal(t, resp.ID, fx.store.issued[0].DocumentID)

	// cobro SALE referenciando la factura, balance corrido actualizado
	last := fx.store.movs[len(fx.store.movs)-1]
	assert.Equal(t, entity.MovementSale, last.Type)
	assert.Equal(t, resp.ID, last.Reference)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(1180)))
	for _, s := range fx.store.sessions {
		assert.True(t, s.SystemAmount.Equal(decimal.NewFromInt(1680)))
	}
}

// Sin sesión abierta una venta en efectivo falla, y el incremento de la
// secuencia y la factura se revierten con ella: nada queda visible.
func TestCreateInvoice_EfectivoSinSesionRevierteTodo(t *testing.T) {
	fx := newVentaFixture(t)

	_, err := fx.uc.CreateInvoice(context.Background(), companyID, userID, invoiceReq(entity.PaymentCash))
	require.ErrorIs(t, err, domain.ErrSessionNotOpen)

	assert.Equal(t, int64(1304), fx.store.seqs["seq-b02"].CurrentValue, "el NCF no debe quedar consumido")
	assert.Empty(t, fx.store.issued)
	assert.Empty(t, fx.store.invoices)
	assert.Empty(t, fx.store.details)
}

// Si la factura no puede guardarse, el NCF recién emitido se revierte: el
// emisor nunca confirma por adelantado.
func TestCreateInvoice_FalloDeInsercionRevierteNCF(t *testing.T) {
	fx := newVentaFixture(t)
	fx.store.failInvoiceInsert = true

	_, err := fx.uc.CreateInvoice(context.Background(), companyID, userID, invoiceReq(entity.PaymentTransfer))
	require.Error(t, err)

	assert.Equal(t, int64(1304), fx.store.seqs["seq-b02"].CurrentValue)
	assert.Empty(t, fx.store.issued)
}

// Una venta que no es en efectivo no toca la caja.
func TestCreateInvoice_TransferenciaNoTocaCaja(t *testing.T) {
	fx := newVentaFixture(t)

	resp, err := fx.uc.CreateInvoice(context.Background(), companyID, userID, invoiceReq(entity.PaymentTransfer))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.NCF)
	assert.Empty(t, fx.store.movs)
	assert.Empty(t, fx.store.sessions)
}

// B01 (crédito fiscal) exige RNC del receptor.
func TestCreateInvoice_CreditoFiscalExigeRNC(t *testing.T) {
	fx := newVentaFixture(t)
	req := invoiceReq(entity.PaymentTransfer)
	req.NCFType = entity.NCFTipoCreditoFiscal

	_, err := fx.uc.CreateInvoice(context.Background(), companyID, userID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateInvoice_ClienteDeOtraEmpresa(t *testing.T) {
	fx := newVentaFixture(t)

	_, err := fx.uc.CreateInvoice(context.Background(), "99999999-9999-9999-9999-999999999999", userID, invoiceReq(entity.PaymentTransfer))
	assert.Error(t, err)
}

// Un fallo al leer el cliente durante la consulta de factura se propaga; no se
// devuelve la factura con el nombre en blanco como si el cliente no existiera.
func TestGetInvoice_FalloDeClientePropaga(t *testing.T) {
	fx := newVentaFixture(t)
	resp, err := fx.uc.CreateInvoice(context.Background(), companyID, userID, invoiceReq(entity.PaymentTransfer))
	require.NoError(t, err)

	fallando := &vCustomerRepo{err: errors.New("lectura de cliente: conexión perdida")}
	uc := billing.NewCreateInvoiceUseCase(
		&ventaTxRunner{store: fx.store}, fiscal.NewIssueNCFUseCase(nil, nil, 0),
		fx.caja, fallando, &vRegisterRepo{registers: map[string]*entity.CashRegister{}},
		&vInvoiceRepo{store: fx.store},
	)

	_, err = uc.GetInvoice(context.Background(), companyID, resp.ID)
	assert.ErrorContains(t, err, "conexión perdida")
}
