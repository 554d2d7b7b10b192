package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgrm/scheduler/internal/app"
	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/delivery/export"
	"github.com/sgrm/scheduler/internal/platform/locale"
	"github.com/sgrm/scheduler/report"
)

// env holds what every subcommand builds from configuration.
type env struct {
	cfg      *app.CLIConfig
	loc      *time.Location
	logger   *slog.Logger
	service  *delivery.Service
	exporter *export.PDFExporter
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schedulerctl",
		Short:         "Delivery schedule tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newListCmd(), newManifestCmd(), newArchiveCmd())
	return root
}

func loadEnv() (*env, error) {
	cfg, err := app.LoadCLIConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := app.NewCLILogger(cfg)
	client := delivery.NewClient(cfg.DeliveryAPIURL, delivery.WithHTTPClient(&http.Client{Timeout: cfg.DeliveryAPITimeout}))
	exporter, err := export.NewPDFExporter(report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout), cfg.CompanyName, loc, nil)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		service:  delivery.NewService(client, nil, logger),
		exporter: exporter,
	}, nil
}

// commandContext is cancelled on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

// resolveDay defaults to today and rejects anything but YYYY-MM-DD.
func resolveDay(day string, loc *time.Location) (string, error) {
	if day == "" {
		return locale.Today(loc), nil
	}
	if !locale.ValidDay(day) {
		return "", fmt.Errorf("invalid day %q, expected YYYY-MM-DD", day)
	}
	return day, nil
}
