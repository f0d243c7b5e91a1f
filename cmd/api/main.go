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

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/kardex-api/internal/interfaces/http"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// El núcleo es agnóstico del almacén: los mismos casos de uso se atan al
	// adaptador PostgreSQL o al de memoria según configuración.
	var (
		txRunner    ledger.TxRunner
		balanceRepo repository.BalanceRepository
		ledgerRepo  repository.LedgerRepository
		alertRepo   repository.AlertRepository
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		txRunner = store
		balanceRepo = memory.NewBalanceRepository(store)
		ledgerRepo = memory.NewLedgerRepository(store)
		alertRepo = memory.NewAlertRepository(store)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		balanceRepo = postgres.NewBalanceRepository(pool)
		ledgerRepo = postgres.NewLedgerRepository(pool)
		alertRepo = postgres.NewAlertRepository(pool)
	}

	submitUC := ledger.NewSubmitUseCase(txRunner)
	queryUC := ledger.NewQueryUseCase(balanceRepo, ledgerRepo)
	detectorUC := alerting.NewDetectorUseCase(balanceRepo, alertRepo)
	alertAdminUC := alerting.NewAlertAdminUseCase(alertRepo)

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
		Title:    "Kardex API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Submit:     submitUC,
		Query:      queryUC,
		Detector:   detectorUC,
		AlertAdmin: alertAdminUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	// Pase periódico de detección de stock bajo (opcional por configuración).
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.Alerts.ScanIntervalMinutes > 0 {
		go runDetectionLoop(schedulerCtx, detectorUC, time.Duration(cfg.Alerts.ScanIntervalMinutes)*time.Minute, log)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// runDetectionLoop ejecuta DetectLowStock cada interval hasta que ctx se cancele.
func runDetectionLoop(ctx context.Context, detector *alerting.DetectorUseCase, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("pase periódico de detección activado")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := detector.DetectLowStock(ctx, alerting.DetectInput{DetectedBy: "scheduler"})
			if err != nil {
				log.Error().Err(err).Msg("pase de detección")
				continue
			}
			log.Info().
				Int("created", result.TotalCreated).
				Int("critical", result.Critical).
				Int("warning", result.Warning).
				Int("skipped", result.Skipped).
				Msg("pase de detección completado")
		}
	}
}
