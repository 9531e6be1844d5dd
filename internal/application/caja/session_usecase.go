package caja

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/application/ports"
	"github.com/facturadom/gestion-api/internal/domain"
	domaincaja "github.com/facturadom/gestion-api/internal/domain/caja"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// SessionUseCase gestiona el ciclo de vida de las sesiones de caja:
// OPEN → CLOSED → AUDITED, sin saltos y sin reapertura. Cada operación corre
// en una transacción que relee el estado con la fila bloqueada, de modo que
// ante dos transiciones concurrentes solo una gana y la otra falla con el
// error de estado correspondiente.
type SessionUseCase struct {
	txRunner     TxRunner
	registerRepo repository.CashRegisterRepository
	sessionRepo  repository.CashSessionRepository
	movRepo      repository.CashMovementRepository
	notifier     ports.Notifier

	// resetOnClose: política de reseteo físico del cajón. Si está activa, el
	// cierre registra un CLOSING_WITHDRAWAL retirando el efectivo contado.
	resetOnClose bool
}

// NewSessionUseCase construye el caso de uso.
func NewSessionUseCase(
	txRunner TxRunner,
	registerRepo repository.CashRegisterRepository,
	sessionRepo repository.CashSessionRepository,
	movRepo repository.CashMovementRepository,
	notifier ports.Notifier,
	resetOnClose bool,
) *SessionUseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &SessionUseCase{
		txRunner:     txRunner,
		registerRepo: registerRepo,
		sessionRepo:  sessionRepo,
		movRepo:      movRepo,
		notifier:     notifier,
		resetOnClose: resetOnClose,
	}
}

// Open abre una sesión sobre una caja. Falla con ErrSessionAlreadyOpen si la
// caja ya tiene una sesión abierta; la verificación corre dentro de la
// transacción con la fila de la sesión existente bloqueada, así dos aperturas
// concurrentes no pueden colarse ambas.
func (uc *SessionUseCase) Open(ctx context.Context, companyID, userID string, in dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if in.OpeningAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	register, err := uc.registerRepo.GetByID(ctx, in.RegisterID)
	if err != nil {
		return nil, err
	}
	if register == nil || !register.IsActive {
		return nil, domain.ErrNotFound
	}
	if register.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	session := &entity.CashSession{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		RegisterID:    in.RegisterID,
		OpenedBy:      userID,
		OpeningAmount: in.OpeningAmount,
		SystemAmount:  in.OpeningAmount,
		State:         entity.SessionOpen,
		OpenedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.RunCaja(ctx, func(sessionRepo repository.CashSessionRepository, movRepo repository.CashMovementRepository) error {
		existing, err := sessionRepo.GetOpenByRegisterForUpdate(ctx, in.RegisterID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrSessionAlreadyOpen
		}
		if err := sessionRepo.Create(ctx, session); err != nil {
			return err
		}
		opening := &entity.CashMovement{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			SessionID: session.ID,
			Type:      entity.MovementOpening,
			Amount:    in.OpeningAmount,
			Concept:   "apertura de caja",
			CreatedBy: userID,
			CreatedAt: now,
		}
		return movRepo.Create(ctx, opening)
	})
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session, nil), nil
}

// RegisterMovement asienta un movimiento contra una sesión ABIERTA. El monto
// llega positivo y el signo se aplica según el tipo (retiros y gastos restan).
// El balance corrido de la sesión se actualiza en la misma transacción.
func (uc *SessionUseCase) RegisterMovement(ctx context.Context, companyID, userID, sessionID string, in dto.RegisterCashMovementRequest) (*dto.CashMovementResponse, error) {
	if !entity.ValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	signed := in.Amount
	if entity.MovementSign(in.Type) < 0 {
		signed = signed.Neg()
	}

	now := time.Now()
	mov := &entity.CashMovement{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SessionID: sessionID,
		Type:      in.Type,
		Amount:    signed,
		Reference: in.Reference,
		Concept:   in.Concept,
		CreatedBy: userID,
		CreatedAt: now,
	}

	err := uc.txRunner.RunCaja(ctx, func(sessionRepo repository.CashSessionRepository, movRepo repository.CashMovementRepository) error {
		session, err := lockOpenSession(ctx, sessionRepo, companyID, sessionID)
		if err != nil {
			return err
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		session.SystemAmount = session.SystemAmount.Add(signed)
		session.UpdatedAt = now
		return sessionRepo.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(mov), nil
}

// RegisterSaleInTx asienta el cobro de una venta usando los repositorios de la
// transacción del caller (integración facturación-caja): localiza la sesión
// abierta de la caja con la fila bloqueada y registra un movimiento SALE.
// Si la caja no tiene sesión abierta, falla con ErrSessionNotOpen y la
// factura entera se revierte con ella.
func (uc *SessionUseCase) RegisterSaleInTx(
	ctx context.Context,
	sessionRepo repository.CashSessionRepository,
	movRepo repository.CashMovementRepository,
	companyID, userID, registerID string,
	amount decimal.Decimal,
	reference string,
	now time.Time,
) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	session, err := sessionRepo.GetOpenByRegisterForUpdate(ctx, registerID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrSessionNotOpen
	}
	if session.CompanyID != companyID {
		return domain.ErrForbidden
	}
	mov := &entity.CashMovement{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SessionID: session.ID,
		Type:      entity.MovementSale,
		Amount:    amount,
		Reference: reference,
		Concept:   "cobro de venta",
		CreatedBy: userID,
		CreatedAt: now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return err
	}
	session.SystemAmount = session.SystemAmount.Add(amount)
	session.UpdatedAt = now
	return sessionRepo.Update(ctx, session)
}

// Close cierra la sesión: re-reproduce el libro completo para obtener el monto
// esperado (nunca confía en el balance corrido sin verificarlo), registra el
// monto declarado y el descuadre, y transiciona a CLOSED. El movimiento
// CLOSING_WITHDRAWAL, si la política lo exige, se asienta después de calcular
// el esperado, por lo que el monto de cierre guardado refleja el cajón ANTES
// del retiro.
func (uc *SessionUseCase) Close(ctx context.Context, companyID, userID, sessionID string, in dto.CloseSessionRequest) (*dto.SessionResponse, error) {
	if in.DeclaredAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var closed *entity.CashSession
	err := uc.txRunner.RunCaja(ctx, func(sessionRepo repository.CashSessionRepository, movRepo repository.CashMovementRepository) error {
		session, err := lockOpenSession(ctx, sessionRepo, companyID, sessionID)
		if err != nil {
			return err
		}

		movs, err := movRepo.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		system := domaincaja.Balance(movs)
		discrepancy := domaincaja.Discrepancy(in.DeclaredAmount, system)

		declared := in.DeclaredAmount
		session.State = entity.SessionClosed
		session.SystemAmount = system
		session.DeclaredAmount = &declared
		session.Discrepancy = &discrepancy
		session.ClosedAt = &now
		session.ClosedBy = &userID
		session.UpdatedAt = now
		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}

		if uc.resetOnClose && in.DeclaredAmount.IsPositive() {
			withdrawal := &entity.CashMovement{
				ID:        uuid.New().String(),
				CompanyID: companyID,
				SessionID: session.ID,
				Type:      entity.MovementClosingWithdrawal,
				Amount:    in.DeclaredAmount.Neg(),
				Concept:   "retiro de cierre",
				CreatedBy: userID,
				CreatedAt: now,
			}
			if err := movRepo.Create(ctx, withdrawal); err != nil {
				return err
			}
		}
		closed = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.maybeNotifyDescuadre(closed)
	return toSessionResponse(closed, nil), nil
}

// Audit marca una sesión CERRADA como auditada (estado terminal). Ningún
// movimiento es admisible después, en ningún estado.
func (uc *SessionUseCase) Audit(ctx context.Context, companyID, auditorID, sessionID string) (*dto.SessionResponse, error) {
	now := time.Now()
	var audited *entity.CashSession
	err := uc.txRunner.RunCaja(ctx, func(sessionRepo repository.CashSessionRepository, movRepo repository.CashMovementRepository) error {
		session, err := sessionRepo.GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if session.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if session.State != entity.SessionClosed {
			return domain.ErrSessionNotClosed
		}
		session.State = entity.SessionAudited
		session.AuditedAt = &now
		session.AuditedBy = &auditorID
		session.UpdatedAt = now
		audited = session
		return sessionRepo.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return toSessionResponse(audited, nil), nil
}

// Get devuelve el reporte de una sesión con su libro de movimientos.
func (uc *SessionUseCase) Get(ctx context.Context, companyID, sessionID string) (*dto.SessionResponse, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	if session.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	movs, err := uc.movRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session, movs), nil
}

// lockOpenSession relee la sesión con la fila bloqueada y valida empresa y
// estado. Es la guardia contra carreras de estado viejo: un segundo cierre
// concurrente, o un movimiento sobre una sesión recién cerrada, ven aquí el
// estado ya confirmado y fallan con ErrSessionNotOpen.
func lockOpenSession(ctx context.Context, sessionRepo repository.CashSessionRepository, companyID, sessionID string) (*entity.CashSession, error) {
	session, err := sessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	if session.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if session.State != entity.SessionOpen {
		return nil, domain.ErrSessionNotOpen
	}
	return session, nil
}

func (uc *SessionUseCase) maybeNotifyDescuadre(s *entity.CashSession) {
	if s.Discrepancy == nil || s.Discrepancy.IsZero() {
		return
	}
	ev := ports.DescuadreEvent{
		CompanyID:     s.CompanyID,
		SessionID:     s.ID,
		RegisterID:    s.RegisterID,
		SystemAmount:  s.SystemAmount,
		Declared:      *s.DeclaredAmount,
		Discrepancy:   *s.Discrepancy,
		Clasificacion: domaincaja.ClassifyDiscrepancy(*s.Discrepancy, s.SystemAmount),
		ClosedBy:      *s.ClosedBy,
	}
	// Fuera del camino de fallo: el aviso no puede revertir el cierre.
	go uc.notifier.NotifyDescuadre(context.Background(), ev)
}

func toMovementResponse(m *entity.CashMovement) *dto.CashMovementResponse {
	return &dto.CashMovementResponse{
		ID:        m.ID,
		Type:      m.Type,
		Amount:    m.Amount,
		Reference: m.Reference,
		Concept:   m.Concept,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func toSessionResponse(s *entity.CashSession, movs []*entity.CashMovement) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:             s.ID,
		RegisterID:     s.RegisterID,
		State:          s.State,
		OpenedBy:       s.OpenedBy,
		OpeningAmount:  s.OpeningAmount,
		SystemAmount:   s.SystemAmount,
		DeclaredAmount: s.DeclaredAmount,
		Discrepancy:    s.Discrepancy,
		OpenedAt:       s.OpenedAt.Format(time.RFC3339),
	}
	if s.Discrepancy != nil {
		resp.Clasificacion = domaincaja.ClassifyDiscrepancy(*s.Discrepancy, s.SystemAmount)
	}
	if s.ClosedAt != nil {
		v := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &v
	}
	if s.AuditedAt != nil {
		v := s.AuditedAt.Format(time.RFC3339)
		resp.AuditedAt = &v
	}
	for _, m := range movs {
		resp.Movements = append(resp.Movements, *toMovementResponse(m))
	}
	return resp
}
