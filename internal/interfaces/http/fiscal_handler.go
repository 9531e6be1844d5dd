package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/application/fiscal"
	"github.com/facturadom/gestion-api/internal/domain"
)

// FiscalHandler maneja secuencias NCF y emisión de comprobantes (protegido).
type FiscalHandler struct {
	seqUC   *fiscal.SequenceUseCase
	issueUC *fiscal.IssueNCFUseCase
}

// NewFiscalHandler construye el handler fiscal.
func NewFiscalHandler(seqUC *fiscal.SequenceUseCase, issueUC *fiscal.IssueNCFUseCase) *FiscalHandler {
	return &FiscalHandler{seqUC: seqUC, issueUC: issueUC}
}

// CreateSequence godoc
// @Summary      Registrar secuencia NCF autorizada por la DGII
// @Tags         fiscal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateSequenceRequest  true  "tipo, rango y vencimiento"
// @Success      201   {object}  dto.SequenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fiscal/sequences [post]
func (h *FiscalHandler) CreateSequence(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSequenceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	seq, err := h.seqUC.Create(c.Context(), companyID, in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo, rango o vencimiento inválidos"})
		}
		if err == domain.ErrSequenceOverlap {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SEQUENCE_OVERLAP", Message: "el rango se solapa con una secuencia existente del mismo tipo"})
		}
		if err == domain.ErrDuplicate {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "la secuencia ya existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(seq)
}

// ListSequences godoc
// @Summary      Listar secuencias NCF de la empresa
// @Tags         fiscal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.SequenceResponse
// @Router       /api/fiscal/sequences [get]
func (h *FiscalHandler) ListSequences(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	seqs, err := h.seqUC.List(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(seqs)
}

// IssueNCF godoc
// @Summary      Emitir un NCF para un documento
// @Description  Consume el siguiente número del rango activo. 409 si la secuencia está agotada o la fila está en contención.
// @Tags         fiscal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.IssueNCFRequest  true  "tipo de comprobante y documento"
// @Success      201   {object}  dto.NCFResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/fiscal/ncf [post]
func (h *FiscalHandler) IssueNCF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.IssueNCFRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.issueUC.Issue(c.Context(), companyID, userID, in)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo de comprobante o documento inválido"})
		case domain.ErrNoActiveSequence:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_ACTIVE_SEQUENCE", Message: "no hay secuencia activa para ese tipo de comprobante"})
		case domain.ErrSequenceExhausted:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SEQUENCE_EXHAUSTED", Message: "la secuencia está agotada; registre un rango nuevo"})
		case domain.ErrContention:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONTENTION", Message: "la secuencia está en uso, reintente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
