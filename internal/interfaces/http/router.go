package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturadom/gestion-api/internal/application/auth"
	"github.com/facturadom/gestion-api/internal/application/billing"
	"github.com/facturadom/gestion-api/internal/application/caja"
	"github.com/facturadom/gestion-api/internal/application/fiscal"
	"github.com/facturadom/gestion-api/internal/application/usecase"
	"github.com/facturadom/gestion-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC     *usecase.CompanyUseCase
	RegisterUC    *usecase.RegisterUseCase
	SequenceUC    *fiscal.SequenceUseCase
	IssueNCF      *fiscal.IssueNCFUseCase
	SessionUC     *caja.SessionUseCase
	CustomerUC    *billing.CustomerUseCase
	CreateInvoice *billing.CreateInvoiceUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (alta pública para onboarding; consulta por ID)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Cajas físicas (solo admin administra; cualquier rol consulta)
	registers := protected.Group("/registers")
	registerHandler := NewRegisterHandler(deps.RegisterUC)
	registers.Post("/", RequireRole(entity.RoleAdmin), registerHandler.Create)
	registers.Get("/", registerHandler.List)

	// Secuencias NCF y emisión (alta solo admin; emitir: admin y cajero)
	fiscalGroup := protected.Group("/fiscal")
	fiscalHandler := NewFiscalHandler(deps.SequenceUC, deps.IssueNCF)
	fiscalGroup.Post("/sequences", RequireRole(entity.RoleAdmin), fiscalHandler.CreateSequence)
	fiscalGroup.Get("/sequences", fiscalHandler.ListSequences)
	fiscalGroup.Post("/ncf", RequireRole(entity.RoleAdmin, entity.RoleCajero), fiscalHandler.IssueNCF)

	// Sesiones de caja (operación: admin y cajero; auditoría: admin y auditor)
	cajaGroup := protected.Group("/caja")
	cajaHandler := NewCajaHandler(deps.SessionUC)
	cajaGroup.Post("/sessions", RequireRole(entity.RoleAdmin, entity.RoleCajero), cajaHandler.OpenSession)
	cajaGroup.Post("/sessions/:id/movements", RequireRole(entity.RoleAdmin, entity.RoleCajero), cajaHandler.RegisterMovement)
	cajaGroup.Post("/sessions/:id/close", RequireRole(entity.RoleAdmin, entity.RoleCajero), cajaHandler.CloseSession)
	cajaGroup.Post("/sessions/:id/audit", RequireRole(entity.RoleAdmin, entity.RoleAuditor), cajaHandler.AuditSession)
	cajaGroup.Get("/sessions/:id", cajaHandler.GetSession)

	// Clientes (protegido, facturación)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)

	// Facturas (emisión: admin y cajero)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice)
	invoices.Post("/", RequireRole(entity.RoleAdmin, entity.RoleCajero), invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
}
