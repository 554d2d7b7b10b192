package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/sgrm/scheduler/internal/delivery"
	"github.com/sgrm/scheduler/internal/delivery/export"
	jobmetrics "github.com/sgrm/scheduler/internal/jobs"
	"github.com/sgrm/scheduler/internal/platform/locale"
	"github.com/sgrm/scheduler/internal/schedule"
)

// DeliveryLister loads the remote delivery collection.
type DeliveryLister interface {
	List(ctx context.Context) ([]delivery.Delivery, error)
}

// ManifestRenderer renders a day's manifest PDF.
type ManifestRenderer interface {
	Manifest(ctx context.Context, day string, ds []delivery.Delivery) ([]byte, error)
}

// ManifestStore persists rendered manifests.
type ManifestStore interface {
	Save(ctx context.Context, day string, pdf []byte) error
}

// ManifestArchiveJob renders every delivery of a day into a manifest and
// archives it so it can be downloaded after the fact.
type ManifestArchiveJob struct {
	deliveries DeliveryLister
	renderer   ManifestRenderer
	store      ManifestStore
	loc        *time.Location
	logger     *slog.Logger
	metrics    *jobmetrics.Metrics
	clock      clockwork.Clock
}

// NewManifestArchiveJob builds the job handler.
func NewManifestArchiveJob(deliveries DeliveryLister, renderer ManifestRenderer, store ManifestStore, loc *time.Location, logger *slog.Logger, metrics *jobmetrics.Metrics) *ManifestArchiveJob {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ManifestArchiveJob{
		deliveries: deliveries,
		renderer:   renderer,
		store:      store,
		loc:        loc,
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
	}
}

// Handle processes TaskManifestArchive tasks.
func (j *ManifestArchiveJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ManifestArchivePayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("decode manifest archive payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	tracker := j.metrics.Track(TaskManifestArchive)
	_, err := j.Run(ctx, payload.Days)
	return tracker.End(err)
}

// Run archives the manifests of days and returns the days that had
// deliveries. Days without deliveries are skipped.
func (j *ManifestArchiveJob) Run(ctx context.Context, days []string) ([]string, error) {
	if len(days) == 0 {
		days = j.defaultDays()
	}
	for _, day := range days {
		if !locale.ValidDay(day) {
			return nil, fmt.Errorf("invalid day %q: %w", day, asynq.SkipRetry)
		}
	}

	all, err := j.deliveries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("manifest archive: %w", err)
	}

	archived := make([]bool, len(days))
	g, gctx := errgroup.WithContext(ctx)
	for i, day := range days {
		rows := schedule.ForDay(all, day, j.loc)
		if len(rows) == 0 {
			j.metrics.AddManifests(jobmetrics.OutcomeEmpty, 1)
			j.logger.Info("manifest archive skipped", slog.String("day", day))
			continue
		}
		g.Go(func() error {
			pdf, err := j.renderer.Manifest(gctx, day, rows)
			if err != nil {
				if errors.Is(err, export.ErrEmptyManifest) {
					return nil
				}
				return fmt.Errorf("render manifest %s: %w", day, err)
			}
			if err := j.store.Save(gctx, day, pdf); err != nil {
				return err
			}
			archived[i] = true
			j.metrics.AddManifests(jobmetrics.OutcomeArchived, 1)
			j.logger.Info("manifest archived",
				slog.String("day", day),
				slog.Int("deliveries", len(rows)),
				slog.Int("bytes", len(pdf)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(days))
	for i, ok := range archived {
		if ok {
			out = append(out, days[i])
		}
	}
	return out, nil
}

func (j *ManifestArchiveJob) defaultDays() []string {
	now := j.clock.Now().In(j.loc)
	return []string{locale.Day(now, j.loc), locale.Day(now.AddDate(0, 0, 1), j.loc)}
}
