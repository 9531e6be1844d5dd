package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/domain/repository"
)

// RegisterUseCase administración de cajas físicas de una empresa.
type RegisterUseCase struct {
	registerRepo repository.CashRegisterRepository
}

// NewRegisterUseCase construye el caso de uso.
func NewRegisterUseCase(registerRepo repository.CashRegisterRepository) *RegisterUseCase {
	return &RegisterUseCase{registerRepo: registerRepo}
}

// Create da de alta una caja activa.
func (uc *RegisterUseCase) Create(ctx context.Context, companyID string, in dto.CreateRegisterRequest) (*dto.RegisterResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	r := &entity.CashRegister{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Location:  in.Location,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.registerRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return toRegisterResponse(r), nil
}

// List lista las cajas de la empresa.
func (uc *RegisterUseCase) List(ctx context.Context, companyID string) ([]*dto.RegisterResponse, error) {
	registers, err := uc.registerRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.RegisterResponse, 0, len(registers))
	for _, r := range registers {
		out = append(out, toRegisterResponse(r))
	}
	return out, nil
}

func toRegisterResponse(r *entity.CashRegister) *dto.RegisterResponse {
	return &dto.RegisterResponse{
		ID:       r.ID,
		Name:     r.Name,
		Location: r.Location,
		IsActive: r.IsActive,
	}
}
