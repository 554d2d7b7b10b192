package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sgrm/scheduler/internal/app"
	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/delivery/export"
	jobmetrics "github.com/sgrm/scheduler/internal/jobs"
	"github.com/sgrm/scheduler/internal/platform/cache"
	"github.com/sgrm/scheduler/jobs"
	"github.com/sgrm/scheduler/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	apiClient := delivery.NewClient(cfg.DeliveryAPIURL, delivery.WithHTTPClient(&http.Client{Timeout: cfg.DeliveryAPITimeout}))
	deliveryService := delivery.NewService(apiClient, nil, logger)

	pdfClient := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	exporter, err := export.NewPDFExporter(pdfClient, cfg.CompanyName, loc, nil)
	if err != nil {
		logger.Error("init pdf exporter", slog.Any("error", err))
		os.Exit(1)
	}
	archive := export.NewArchive(redisClient, cfg.ManifestArchiveTTL)

	archiveJob := jobs.NewManifestArchiveJob(deliveryService, exporter, archive, loc, logger, jobmetrics.NewMetrics(prometheus.DefaultRegisterer))

	archiveTask, err := jobs.NewManifestArchiveTask(jobs.ManifestArchivePayload{})
	if err != nil {
		logger.Error("build manifest archive task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:    logger,
		Location:  loc,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskManifestArchive, Handler: archiveJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ManifestArchiveCron, Task: archiveTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
