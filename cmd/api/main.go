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
	"github.com/jhoicas/branch-ledger/internal/application/catalog"
	"github.com/jhoicas/branch-ledger/internal/application/checkout"
	"github.com/jhoicas/branch-ledger/internal/application/credit"
	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/application/retry"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/branch-ledger/internal/interfaces/http"
	"github.com/jhoicas/branch-ledger/pkg/config"
	"github.com/jhoicas/branch-ledger/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	var (
		txRunner repository.TxRunner
		repos    repository.Repos
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		txRunner = store
		repos = store.Repos()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		txRunner = postgres.NewTxRunner(pool)
		repos = postgres.NewRepos(pool)
	}

	m := metrics.New()
	policy := retry.Policy{
		MaxRetries: cfg.Ledger.ConflictRetries,
		Notify: func(err error, wait time.Duration) {
			m.ConflictRetry()
			log.Warn().Err(err).Dur("wait", wait).Msg("conflicto de concurrencia, reintentando")
		},
	}

	catalogUC := catalog.NewProductUseCase(txRunner, repos)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, repos)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos)
	riskUC := credit.NewRiskUseCase(txRunner, repos)
	checkoutUC := checkout.NewCheckoutUseCase(txRunner, ledgerUC, riskUC, policy)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
		// los params y el body pasan a los repositorios; no pueden apuntar al buffer de fasthttp
		Immutable: true,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Branch Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:       catalogUC,
		LedgerUC:        ledgerUC,
		ReplenishmentUC: replenishmentUC,
		RiskUC:          riskUC,
		CheckoutUC:      checkoutUC,
		Retry:           policy,
		Metrics:         m,
		Logger:          log,
		JWTSecret:       cfg.JWT.Secret,
		ServiceName:     cfg.App.Name,
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
