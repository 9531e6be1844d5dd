package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/facturadom/gestion-api/internal/application/auth"
	"github.com/facturadom/gestion-api/internal/application/billing"
	"github.com/facturadom/gestion-api/internal/application/caja"
	"github.com/facturadom/gestion-api/internal/application/fiscal"
	"github.com/facturadom/gestion-api/internal/application/ports"
	"github.com/facturadom/gestion-api/internal/application/usecase"
	"github.com/facturadom/gestion-api/internal/domain/entity"
	"github.com/facturadom/gestion-api/internal/infrastructure/notify"
	"github.com/facturadom/gestion-api/internal/infrastructure/postgres"
	httpRouter "github.com/facturadom/gestion-api/internal/interfaces/http"
	"github.com/facturadom/gestion-api/pkg/config"
	"github.com/facturadom/gestion-api/pkg/logger"

	_ "github.com/facturadom/gestion-api/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	registerRepo := postgres.NewCashRegisterRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	seqRepo := postgres.NewFiscalSequenceRepository(pool)
	sessionRepo := postgres.NewCashSessionRepository(pool)
	movRepo := postgres.NewCashMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeoutMS)

	// Notificador de avisos operativos (descuadres, secuencias por agotarse)
	var notifier ports.Notifier = ports.NopNotifier{}
	if cfg.DGII.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.DGII.WebhookURL, log)
	}

	sequenceUC := fiscal.NewSequenceUseCase(seqRepo)
	issueNCFUC := fiscal.NewIssueNCFUseCase(txRunner, notifier, cfg.DGII.AlertThreshold)
	sessionUC := caja.NewSessionUseCase(txRunner, registerRepo, sessionRepo, movRepo, notifier, cfg.Caja.ResetOnClose)
	customerUC := billing.NewCustomerUseCase(customerRepo)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(
		txRunner, issueNCFUC, sessionUC,
		customerRepo, registerRepo, invoiceRepo,
	)
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	registerUC := usecase.NewRegisterUseCase(registerRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	authUC.AfterRegister = func(u *entity.User) {
		log.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("usuario registrado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Gestión API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:     companyUC,
		RegisterUC:    registerUC,
		SequenceUC:    sequenceUC,
		IssueNCF:      issueNCFUC,
		SessionUC:     sessionUC,
		CustomerUC:    customerUC,
		CreateInvoice: createInvoiceUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
