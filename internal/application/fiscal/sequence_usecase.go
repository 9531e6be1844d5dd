package fiscal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// SequenceUseCase administra las secuencias NCF de una empresa: alta por
// importación de la autorización DGII y consulta de estado. Las secuencias
// nunca se borran.
type SequenceUseCase struct {
	seqRepo repository.FiscalSequenceRepository
}

// NewSequenceUseCase construye el caso de uso.
func NewSequenceUseCase(seqRepo repository.FiscalSequenceRepository) *SequenceUseCase {
	return &SequenceUseCase{seqRepo: seqRepo}
}

// Create da de alta una secuencia. En un rango virgen CurrentValue queda en
// RangeStart-1 (el primer NCF emitido será RangeStart); una importación de
// rango en uso puede indicar el último número ya emitido.
func (uc *SequenceUseCase) Create(ctx context.Context, companyID string, in dto.CreateSequenceRequest) (*dto.SequenceResponse, error) {
	if !entity.ValidNCFType(in.NCFType) {
		return nil, domain.ErrInvalidInput
	}
	if in.RangeStart < 1 || in.RangeEnd <= in.RangeStart {
		return nil, domain.ErrInvalidInput
	}
	current := in.RangeStart - 1
	if in.CurrentValue != nil {
		current = *in.CurrentValue
		if current < in.RangeStart-1 || current > in.RangeEnd {
			return nil, domain.ErrInvalidInput
		}
	}
	if !in.ExpiresAt.After(time.Now()) {
		return nil, domain.ErrInvalidInput
	}

	// Un mismo número no puede pertenecer a dos rangos del mismo tipo: la DGII
	// autoriza rangos disjuntos y el emisor asume esa unicidad.
	existing, err := uc.seqRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, s := range existing {
		if s.NCFType == in.NCFType && in.RangeStart <= s.RangeEnd && s.RangeStart <= in.RangeEnd {
			return nil, domain.ErrSequenceOverlap
		}
	}

	now := time.Now()
	seq := &entity.FiscalSequence{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		NCFType:      in.NCFType,
		RangeStart:   in.RangeStart,
		RangeEnd:     in.RangeEnd,
		CurrentValue: current,
		ExpiresAt:    in.ExpiresAt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.seqRepo.Create(ctx, seq); err != nil {
		return nil, err
	}
	return toSequenceResponse(seq), nil
}

// List lista las secuencias de la empresa, activas e inactivas.
func (uc *SequenceUseCase) List(ctx context.Context, companyID string) ([]*dto.SequenceResponse, error) {
	seqs, err := uc.seqRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SequenceResponse, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, toSequenceResponse(s))
	}
	return out, nil
}

func toSequenceResponse(s *entity.FiscalSequence) *dto.SequenceResponse {
	return &dto.SequenceResponse{
		ID:           s.ID,
		NCFType:      s.NCFType,
		RangeStart:   s.RangeStart,
		RangeEnd:     s.RangeEnd,
		CurrentValue: s.CurrentValue,
		Remaining:    s.Remaining(),
		ExpiresAt:    s.ExpiresAt.Format(time.RFC3339),
		IsActive:     s.IsActive,
	}
}
