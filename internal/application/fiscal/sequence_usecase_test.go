package fiscal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/application/fiscal"
	"github.com/facturadom/gestion-api/internal/domain"
	"github.com/facturadom/gestion-api/internal/domain/entity"
)

func createReq(ncfType string, start, end int64) dto.CreateSequenceRequest {
	return dto.CreateSequenceRequest{
		NCFType:    ncfType,
		RangeStart: start,
		RangeEnd:   end,
		ExpiresAt:  time.Now().Add(365 * 24 * time.Hour),
	}
}

func TestCreateSequence_RangoVirgen(t *testing.T) {
	store := newFakeStore()
	uc := fiscal.NewSequenceUseCase(&fakeSeqRepo{store: store})

	resp, err := uc.Create(context.Background(), companyID, createReq(entity.NCFTipoConsumo, 1, 1000))
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.CurrentValue, "en un rango virgen el último emitido es start-1")
	assert.Equal(t, int64(1000), resp.Remaining)
	assert.True(t, resp.IsActive)
}

func TestCreateSequence_RangoEnUso(t *testing.T) {
	store := newFakeStore()
	uc := fiscal.NewSequenceUseCase(&fakeSeqRepo{store: store})

	current := int64(350)
	req := createReq(entity.NCFTipoConsumo, 1, 1000)
	req.CurrentValue = &current

	resp, err := uc.Create(context.Background(), companyID, req)
	require.NoError(t, err)
	assert.Equal(t, int64(350), resp.CurrentValue)
	assert.Equal(t, int64(650), resp.Remaining)
}

func TestCreateSequence_RangoSolapadoMismoTipo(t *testing.T) {
	store := newFakeStore(activeSeq(10, 1000)) // tipo 02, rango 1..1000
	uc := fiscal.NewSequenceUseCase(&fakeSeqRepo{store: store})

	_, err := uc.Create(context.Background(), companyID, createReq(entity.NCFTipoConsumo, 500, 2000))
	assert.ErrorIs(t, err, domain.ErrSequenceOverlap)
}

func TestCreateSequence_RangoContiguoNoSolapa(t *testing.T) {
	store := newFakeStore(activeSeq(10, 1000))
	uc := fiscal.NewSequenceUseCase(&fakeSeqRepo{store: store})

	_, err := uc.Create(context.Background(), companyID, createReq(entity.NCFTipoConsumo, 1001, 2000))
	assert.NoError(t, err, "un rango contiguo al existente es válido")
}

func TestCreateSequence_MismoRangoOtroTipoNoSolapa(t *testing.T) {
	store := newFakeStore(activeSeq(10, 1000))
	uc := fiscal.NewSequenceUseCase(&fakeSeqRepo{store: store})

	_, err := uc.Create(context.Background(), companyID, createReq(entity.NCFTipoCreditoFiscal, 1, 1000))
	assert.NoError(t, err, "rangos por tipo de comprobante son espacios independientes")
}

func TestCreateSequence_Validaciones(t *testing.T) {
	store := newFakeStore()
	uc := fiscal.NewSequenceUseCase(&fakeSeqRepo{store: store})

	cases := []struct {
		name string
		req  dto.CreateSequenceRequest
	}{
		{"tipo desconocido", createReq("99", 1, 100)},
		{"rango invertido", createReq(entity.NCFTipoConsumo, 100, 100)},
		{"inicio en cero", createReq(entity.NCFTipoConsumo, 0, 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), companyID, tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	vencida := createReq(entity.NCFTipoConsumo, 1, 100)
	vencida.ExpiresAt = time.Now().Add(-time.Hour)
	_, err := uc.Create(context.Background(), companyID, vencida)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se puede importar una autorización vencida")

	fuera := int64(101)
	conCurrent := createReq(entity.NCFTipoConsumo, 1, 100)
	conCurrent.CurrentValue = &fuera
	_, err = uc.Create(context.Background(), companyID, conCurrent)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "current fuera del rango")
}

func TestListSequences_DevuelveTodas(t *testing.T) {
	vencida := activeSeq(10, 100)
	vencida.ID = "seq-2"
	vencida.IsActive = false
	store := newFakeStore(activeSeq(10, 100), vencida)
	uc := fiscal.NewSequenceUseCase(&fakeSeqRepo{store: store})

	out, err := uc.List(context.Background(), companyID)
	require.NoError(t, err)
	assert.Len(t, out, 2, "el listado incluye activas e inactivas")
}
