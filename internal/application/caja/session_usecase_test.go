package caja_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturadom/gestion-api/internal/application/caja"
	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/application/ports"
	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El runner serializa las "transacciones" con un mutex y
// revierte el store si el callback falla, igual que el TxRunner real.
// ──────────────────────────────────────────────────────────────────────────────

type cajaStore struct {
	mu       sync.Mutex
	sessions map[string]*entity.CashSession
	movs     []*entity.CashMovement
}

func newCajaStore() *cajaStore {
	return &cajaStore{sessions: make(map[string]*entity.CashSession)}
}

type cajaTxRunner struct{ store *cajaStore }

func (r *cajaTxRunner) RunCaja(ctx context.Context, fn func(repository.CashSessionRepository, repository.CashMovementRepository) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapSessions := make(map[string]entity.CashSession, len(r.store.sessions))
	for id, s := range r.store.sessions {
		snapSessions[id] = *s
	}
	snapMovs := len(r.store.movs)

	err := fn(&fakeSessionRepo{store: r.store}, &fakeMovRepo{store: r.store})
	if err != nil {
		restored := make(map[string]*entity.CashSession, len(snapSessions))
		for id := range snapSessions {
			cp := snapSessions[id]
			restored[id] = &cp
		}
		r.store.sessions = restored
		r.store.movs = r.store.movs[:snapMovs]
	}
	return err
}

type fakeSessionRepo struct{ store *cajaStore }

func (f *fakeSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	cp := *s
	f.store.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	if s, ok := f.store.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSessionRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSessionRepo) GetOpenByRegisterForUpdate(ctx context.Context, registerID string) (*entity.CashSession, error) {
	for _, s := range f.store.sessions {
		if s.RegisterID == registerID && s.State == entity.SessionOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	cp := *s
	f.store.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) ListByRegister(ctx context.Context, registerID string, limit, offset int) ([]*entity.CashSession, error) {
	var out []*entity.CashSession
	for _, s := range f.store.sessions {
		if s.RegisterID == registerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMovRepo struct{ store *cajaStore }

func (f *fakeMovRepo) Create(ctx context.Context, m *entity.CashMovement) error {
	cp := *m
	f.store.movs = append(f.store.movs, &cp)
	return nil
}

func (f *fakeMovRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	var out []*entity.CashMovement
	for _, m := range f.store.movs {
		if m.SessionID == sessionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeRegisterRepo struct {
	registers map[string]*entity.CashRegister
}

func (f *fakeRegisterRepo) Create(ctx context.Context, r *entity.CashRegister) error {
	f.registers[r.ID] = r
	return nil
}

func (f *fakeRegisterRepo) GetByID(ctx context.Context, id string) (*entity.CashRegister, error) {
	if r, ok := f.registers[id]; ok {
		return r, nil
	}
	return nil, nil
}

func (f *fakeRegisterRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CashRegister, error) {
	return nil, nil
}

type descuadreNotifier struct {
	mu   sync.Mutex
	evs  []ports.DescuadreEvent
	done chan struct{}
}

func (n *descuadreNotifier) NotifyDescuadre(_ context.Context, ev ports.DescuadreEvent) {
	n.mu.Lock()
	n.evs = append(n.evs, ev)
	n.mu.Unlock()
	if n.done != nil {
		close(n.done)
	}
}
func (n *descuadreNotifier) NotifySequenceLow(context.Context, ports.SequenceLowEvent) {}

// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID  = "11111111-1111-1111-1111-111111111111"
	cajeroID   = "22222222-2222-2222-2222-222222222222"
	auditorID  = "33333333-3333-3333-3333-333333333333"
	registerID = "44444444-4444-4444-4444-444444444444"
)

type fixture struct {
	store *cajaStore
	uc    *caja.SessionUseCase
}

func newFixture(t *testing.T, notifier ports.Notifier, resetOnClose bool) *fixture {
	t.Helper()
	store := newCajaStore()
	registers := &fakeRegisterRepo{registers: map[string]*entity.CashRegister{
		registerID: {ID: registerID, CompanyID: companyID, Name: "Caja 1", IsActive: true},
	}}
	uc := caja.NewSessionUseCase(
		&cajaTxRunner{store: store},
		registers,
		&fakeSessionRepo{store: store},
		&fakeMovRepo{store: store},
		notifier,
		resetOnClose,
	)
	return &fixture{store: store, uc: uc}
}

func openSession(t *testing.T, fx *fixture, opening float64) string {
	t.Helper()
	resp, err := fx.uc.Open(context.Background(), companyID, cajeroID, dto.OpenSessionRequest{
		RegisterID:    registerID,
		OpeningAmount: decimal.NewFromFloat(opening),
	})
	require.NoError(t, err)
	return resp.ID
}

func movReq(tipo string, amount float64) dto.RegisterCashMovementRequest {
	return dto.RegisterCashMovementRequest{Type: tipo, Amount: decimal.NewFromFloat(amount), Concept: "movimiento de prueba"}
}

func TestOpen_CreaSesionYMovimientoDeApertura(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)

	s := fx.store.sessions[id]
	require.NotNil(t, s)
	assert.Equal(t, entity.SessionOpen, s.State)
	assert.True(t, s.SystemAmount.Equal(decimal.NewFromInt(500)))

	require.Len(t, fx.store.movs, 1)
	assert.Equal(t, entity.MovementOpening, fx.store.movs[0].Type)
	assert.True(t, fx.store.movs[0].Amount.Equal(decimal.NewFromInt(500)))
}

// Una caja con sesión abierta rechaza una segunda apertura y la sesión
// existente queda intacta.
func TestOpen_SegundaAperturaFalla(t *testing.T) {
	fx := newFixture(t, nil, false)
	first := openSession(t, fx, 500)

	_, err := fx.uc.Open(context.Background(), companyID, cajeroID, dto.OpenSessionRequest{
		RegisterID:    registerID,
		OpeningAmount: decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	s := fx.store.sessions[first]
	assert.Equal(t, entity.SessionOpen, s.State)
	assert.True(t, s.SystemAmount.Equal(decimal.NewFromInt(500)), "la sesión existente no debe tocarse")
	assert.Len(t, fx.store.movs, 1, "no debe asentarse ninguna apertura extra")
}

func TestOpen_CajaDesconocida(t *testing.T) {
	fx := newFixture(t, nil, false)
	_, err := fx.uc.Open(context.Background(), companyID, cajeroID, dto.OpenSessionRequest{
		RegisterID: "55555555-5555-5555-5555-555555555555",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovement_ActualizaBalanceCorrido(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)

	_, err := fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementSale, 1200))
	require.NoError(t, err)
	resp, err := fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementManualWithdrawal, 200))
	require.NoError(t, err)

	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(-200)), "el retiro se guarda con signo negativo")
	assert.True(t, fx.store.sessions[id].SystemAmount.Equal(decimal.NewFromInt(1500)))
	assert.Len(t, fx.store.movs, 3) // apertura + venta + retiro
}

func TestRegisterMovement_SesionCerradaNoAdmiteMovimientos(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)
	_, err := fx.uc.Close(context.Background(), companyID, cajeroID, id, dto.CloseSessionRequest{DeclaredAmount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	movsBefore := len(fx.store.movs)
	_, err = fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementSale, 100))
	require.ErrorIs(t, err, domain.ErrSessionNotOpen)
	assert.Len(t, fx.store.movs, movsBefore, "no debe quedar ningún movimiento asentado")
}

func TestRegisterMovement_TipoYMontoInvalidos(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)

	_, err := fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq("OPENING", 100))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "OPENING solo lo genera el ciclo de vida")

	_, err = fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementSale, -10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Escenario de arqueo del flujo completo: apertura 500, venta +1200,
// retiro -200, declarado 1450 → esperado 1500, descuadre -50.
func TestClose_CalculaEsperadoYDescuadre(t *testing.T) {
	notifier := &descuadreNotifier{done: make(chan struct{})}
	fx := newFixture(t, notifier, false)
	id := openSession(t, fx, 500)

	_, err := fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementSale, 1200))
	require.NoError(t, err)
	_, err = fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementManualWithdrawal, 200))
	require.NoError(t, err)

	resp, err := fx.uc.Close(context.Background(), companyID, cajeroID, id, dto.CloseSessionRequest{
		DeclaredAmount: decimal.NewFromFloat(1450.00),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SessionClosed, resp.State)
	assert.True(t, resp.SystemAmount.Equal(decimal.NewFromInt(1500)))
	require.NotNil(t, resp.Discrepancy)
	assert.True(t, resp.Discrepancy.Equal(decimal.NewFromInt(-50)))

	// el descuadre dispara el aviso fuera de la transacción
	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("el aviso de descuadre no llegó")
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.evs, 1)
	assert.True(t, notifier.evs[0].Discrepancy.Equal(decimal.NewFromInt(-50)))
}

func TestClose_SinDescuadreNoAvisa(t *testing.T) {
	notifier := &descuadreNotifier{}
	fx := newFixture(t, notifier, false)
	id := openSession(t, fx, 500)

	_, err := fx.uc.Close(context.Background(), companyID, cajeroID, id, dto.CloseSessionRequest{
		DeclaredAmount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Empty(t, notifier.evs)
}

// Con la política de reseteo activa, el cierre asienta un CLOSING_WITHDRAWAL
// por el monto contado, después de calcular el esperado.
func TestClose_PoliticaDeReseteo(t *testing.T) {
	fx := newFixture(t, nil, true)
	id := openSession(t, fx, 500)

	resp, err := fx.uc.Close(context.Background(), companyID, cajeroID, id, dto.CloseSessionRequest{
		DeclaredAmount: decimal.NewFromInt(480),
	})
	require.NoError(t, err)
	assert.True(t, resp.SystemAmount.Equal(decimal.NewFromInt(500)), "el esperado refleja el cajón antes del retiro")

	last := fx.store.movs[len(fx.store.movs)-1]
	assert.Equal(t, entity.MovementClosingWithdrawal, last.Type)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(-480)))
}

// Dos cierres sobre la misma sesión: solo el primero gana; el segundo ve el
// estado CLOSED releído dentro de la transacción y falla.
func TestClose_DobleCierre(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)

	_, err := fx.uc.Close(context.Background(), companyID, cajeroID, id, dto.CloseSessionRequest{DeclaredAmount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	_, err = fx.uc.Close(context.Background(), companyID, cajeroID, id, dto.CloseSessionRequest{DeclaredAmount: decimal.NewFromInt(999)})
	require.ErrorIs(t, err, domain.ErrSessionNotOpen)

	s := fx.store.sessions[id]
	assert.True(t, s.DeclaredAmount.Equal(decimal.NewFromInt(500)), "el cierre ganador no debe sobrescribirse")
}

func TestAudit_SoloDesdeCerrada(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)

	_, err := fx.uc.Audit(context.Background(), companyID, auditorID, id)
	require.ErrorIs(t, err, domain.ErrSessionNotClosed, "no se audita una sesión abierta")

	_, err = fx.uc.Close(context.Background(), companyID, cajeroID, id, dto.CloseSessionRequest{DeclaredAmount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	resp, err := fx.uc.Audit(context.Background(), companyID, auditorID, id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionAudited, resp.State)

	// terminal: ni se re-audita ni admite movimientos
	_, err = fx.uc.Audit(context.Background(), companyID, auditorID, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotClosed)
	_, err = fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementSale, 10))
	assert.ErrorIs(t, err, domain.ErrSessionNotOpen)
}

func TestGet_ReporteConMovimientos(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)
	_, err := fx.uc.RegisterMovement(context.Background(), companyID, cajeroID, id, movReq(entity.MovementMinorExpense, 35.50))
	require.NoError(t, err)

	resp, err := fx.uc.Get(context.Background(), companyID, id)
	require.NoError(t, err)
	assert.Len(t, resp.Movements, 2)
	assert.True(t, resp.SystemAmount.Equal(decimal.NewFromFloat(464.50)))
}

func TestGet_OtraEmpresaNoVeLaSesion(t *testing.T) {
	fx := newFixture(t, nil, false)
	id := openSession(t, fx, 500)

	_, err := fx.uc.Get(context.Background(), "99999999-9999-9999-9999-999999999999", id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
