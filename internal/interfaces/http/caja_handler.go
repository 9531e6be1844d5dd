package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturadom/gestion-api/internal/application/caja"
	"github.com/facturadom/gestion-api/internal/application/dto"
	"github.com/facturadom/gestion-api/internal/domain"
)

// CajaHandler maneja el ciclo de vida de sesiones de caja (protegido).
type CajaHandler struct {
	uc *caja.SessionUseCase
}

// NewCajaHandler construye el handler de caja.
func NewCajaHandler(uc *caja.SessionUseCase) *CajaHandler {
	return &CajaHandler{uc: uc}
}

// OpenSession godoc
// @Summary      Abrir sesión de caja
// @Description  Registra el fondo inicial y crea el movimiento OPENING. 409 si la caja ya tiene una sesión abierta.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.OpenSessionRequest  true  "caja y monto de apertura"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caja/sessions [post]
func (h *CajaHandler) OpenSession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.OpenSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Open(c.Context(), companyID, userID, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de caja
// @Description  Asienta un movimiento en el libro de la sesión abierta. El monto se envía positivo; el signo lo determina el tipo.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                           true  "ID de sesión"
// @Param        body  body  dto.RegisterCashMovementRequest  true  "tipo, monto, referencia"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caja/sessions/{id}/movements [post]
func (h *CajaHandler) RegisterMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sessionID := c.Params("id")
	var in dto.RegisterCashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.RegisterMovement(c.Context(), companyID, userID, sessionID, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CloseSession godoc
// @Summary      Cerrar sesión de caja (arqueo)
// @Description  Re-reproduce el libro, calcula el descuadre contra el monto declarado y deja la sesión en CLOSED.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                   true  "ID de sesión"
// @Param        body  body  dto.CloseSessionRequest  true  "monto contado"
// @Success      200   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caja/sessions/{id}/close [post]
func (h *CajaHandler) CloseSession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sessionID := c.Params("id")
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Close(c.Context(), companyID, userID, sessionID, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(out)
}

// AuditSession godoc
// @Summary      Marcar sesión como auditada
// @Description  Transición CLOSED → AUDITED. Solo para rol auditor o admin.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/caja/sessions/{id}/audit [post]
func (h *CajaHandler) AuditSession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sessionID := c.Params("id")
	out, err := h.uc.Audit(c.Context(), companyID, userID, sessionID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(out)
}

// GetSession godoc
// @Summary      Consultar sesión con su libro de movimientos
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caja/sessions/{id} [get]
func (h *CajaHandler) GetSession(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(out)
}

// mapError traduce los sentinelas del dominio de caja a HTTP.
func (h *CajaHandler) mapError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sesión o caja no encontrada"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case domain.ErrSessionAlreadyOpen:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_ALREADY_OPEN", Message: "la caja ya tiene una sesión abierta"})
	case domain.ErrSessionNotOpen:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_NOT_OPEN", Message: "la sesión no está abierta"})
	case domain.ErrSessionNotClosed:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_NOT_CLOSED", Message: "solo una sesión cerrada puede auditarse"})
	case domain.ErrContention:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONTENTION", Message: "la sesión está en uso, reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
