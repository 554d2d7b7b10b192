package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sgrm/scheduler/internal/app"
	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/delivery/export"
	deliveryhttp "github.com/sgrm/scheduler/internal/delivery/http"
	"github.com/sgrm/scheduler/internal/observability"
	"github.com/sgrm/scheduler/internal/platform/cache"
	"github.com/sgrm/scheduler/internal/platform/db"
	"github.com/sgrm/scheduler/internal/shared"
	"github.com/sgrm/scheduler/internal/view"
	"github.com/sgrm/scheduler/jobs"
	"github.com/sgrm/scheduler/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	loc, _ := cfg.Location()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	var auditRecorder delivery.AuditRecorder
	if cfg.AuditEnabled() {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		auditLogger := shared.NewAuditLogger(pool)
		if err := auditLogger.EnsureSchema(ctx); err != nil {
			logger.Error("audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		auditRecorder = auditLogger
	}

	apiClient := delivery.NewClient(cfg.DeliveryAPIURL,
		delivery.WithHTTPClient(&http.Client{Timeout: cfg.DeliveryAPITimeout}),
		delivery.WithObserver(metrics),
	)
	deliveryService := delivery.NewService(apiClient, auditRecorder, logger)

	sessionManager := shared.NewSessionManager(redisClient, "scheduler_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	reportClient := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	reportHandler := report.NewHandler(reportClient, logger)
	exporter, err := export.NewPDFExporter(reportClient, cfg.CompanyName, loc, metrics)
	if err != nil {
		logger.Error("init pdf exporter", slog.Any("error", err))
		os.Exit(1)
	}
	archive := export.NewArchive(redisClient, cfg.ManifestArchiveTTL)

	deliveryHandler := deliveryhttp.NewHandler(logger, deliveryService, exporter, archive, templates, csrfManager, loc)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Templates:       templates,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		DeliveryHandler: deliveryHandler,
		ReportHandler:   reportHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("delivery_api", cfg.DeliveryAPIURL),
			slog.Bool("audit", cfg.AuditEnabled()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
