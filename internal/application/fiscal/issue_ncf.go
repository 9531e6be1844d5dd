package fiscal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/application/ports"
	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/ncf"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// IssueNCFUseCase emite números de comprobante fiscal: únicos, sin huecos y
// estrictamente crecientes dentro del rango autorizado de cada secuencia.
//
// La serialización de emisiones concurrentes es pesimista: la fila de la
// secuencia se bloquea con SELECT ... FOR UPDATE y el read-modify-write ocurre
// bajo ese bloqueo. Los emisores que compiten por el mismo rango esperan el
// lock en orden; la espera está acotada por el lock_timeout de la transacción
// y al vencer la operación falla con domain.ErrContention, el caller decide si
// reintenta. No hay bucle de reintento interno: bajo bloqueo de fila el
// incremento nunca pierde una carrera.
type IssueNCFUseCase struct {
	txRunner       TxRunner
	notifier       ports.Notifier
	alertThreshold int64 // restantes <= umbral dispara NotifySequenceLow
}

// NewIssueNCFUseCase construye el emisor.
func NewIssueNCFUseCase(txRunner TxRunner, notifier ports.Notifier, alertThreshold int64) *IssueNCFUseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &IssueNCFUseCase{txRunner: txRunner, notifier: notifier, alertThreshold: alertThreshold}
}

// Issue emite el siguiente NCF para la empresa y tipo, en su propia transacción.
// Para emitir dentro de una transacción mayor (ej: creación de factura) usar IssueInTx.
func (uc *IssueNCFUseCase) Issue(ctx context.Context, companyID, userID string, in dto.IssueNCFRequest) (*dto.NCFResponse, error) {
	if in.DocumentID == "" {
		return nil, domain.ErrInvalidInput
	}

	var issued *entity.NCF
	var snapshot *entity.FiscalSequence
	err := uc.txRunner.Run(ctx, func(seqRepo repository.FiscalSequenceRepository, ncfRepo repository.NCFRepository) error {
		n, seq, err := uc.IssueInTx(ctx, seqRepo, ncfRepo, companyID, userID, in.NCFType, in.DocumentID, time.Now())
		if err != nil {
			return err
		}
		issued = n
		snapshot = seq
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.MaybeNotifyLow(issued, snapshot)

	return &dto.NCFResponse{
		NCF:        issued.Formatted,
		NCFType:    issued.NCFType,
		Value:      issued.Value,
		DocumentID: issued.DocumentID,
		IssuedAt:   issued.IssuedAt.Format(time.RFC3339),
		Remaining:  snapshot.Remaining(),
	}, nil
}

// IssueInTx ejecuta la emisión usando repositorios atados a la transacción del
// caller: localiza la secuencia activa con la fila bloqueada, calcula el
// siguiente valor, lo escribe y registra el comprobante emitido. El commit (y
// por tanto la visibilidad del incremento) queda en manos del caller; si el
// documento que consume el número falla después, todo se revierte junto.
func (uc *IssueNCFUseCase) IssueInTx(
	ctx context.Context,
	seqRepo repository.FiscalSequenceRepository,
	ncfRepo repository.NCFRepository,
	companyID, userID, ncfType, documentID string,
	now time.Time,
) (*entity.NCF, *entity.FiscalSequence, error) {
	if !entity.ValidNCFType(ncfType) {
		return nil, nil, domain.ErrInvalidInput
	}

	seq, err := seqRepo.GetActiveForUpdate(ctx, companyID, ncfType)
	if err != nil {
		return nil, nil, err
	}
	if seq == nil {
		return nil, nil, domain.ErrNoActiveSequence
	}
	if seq.Exhausted() {
		// No se muta nada: la secuencia queda en range_end para auditoría.
		return nil, nil, domain.ErrSequenceExhausted
	}

	next := seq.CurrentValue + 1
	if err := seqRepo.SetCurrentValue(ctx, seq.ID, next); err != nil {
		return nil, nil, err
	}
	seq.CurrentValue = next

	formatted, err := ncf.Format(seq.NCFType, next, seq.RangeEnd)
	if err != nil {
		return nil, nil, err
	}

	issued := &entity.NCF{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		SequenceID: seq.ID,
		NCFType:    seq.NCFType,
		Value:      next,
		Formatted:  formatted,
		DocumentID: documentID,
		IssuedBy:   userID,
		IssuedAt:   now,
	}
	if err := ncfRepo.Create(ctx, issued); err != nil {
		return nil, nil, err
	}
	return issued, seq, nil
}

// MaybeNotifyLow avisa si a la secuencia le quedan pocos números. Pensado para
// llamarse después del commit del caller (nunca dentro de la transacción).
func (uc *IssueNCFUseCase) MaybeNotifyLow(issued *entity.NCF, seq *entity.FiscalSequence) {
	remaining := seq.Remaining()
	if uc.alertThreshold <= 0 || remaining > uc.alertThreshold {
		return
	}
	ev := ports.SequenceLowEvent{
		CompanyID:  issued.CompanyID,
		SequenceID: issued.SequenceID,
		NCFType:    issued.NCFType,
		Remaining:  remaining,
		RangeEnd:   seq.RangeEnd,
	}
	// Fuera del camino de fallo: el aviso no puede afectar la emisión.
	go uc.notifier.NotifySequenceLow(context.Background(), ev)
}
