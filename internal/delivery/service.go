package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/sgrm/scheduler/internal/shared"
)

// API is the remote store contract.
type API interface {
	List(ctx context.Context) ([]Delivery, error)
	Create(ctx context.Context, d Delivery) (Delivery, error)
	Update(ctx context.Context, id int64, d Delivery) (Delivery, error)
	Delete(ctx context.Context, id int64) error
}

// AuditRecorder persists a trail of mutations.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service mirrors the remote delivery collection. It keeps no copy of its
// own: every read goes to the API, and concurrent reads share one call.
type Service struct {
	api    API
	audit  AuditRecorder
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs a delivery service. audit may be nil.
func NewService(api API, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, audit: audit, logger: logger}
}

// List returns the full collection as currently stored remotely.
func (s *Service) List(ctx context.Context) ([]Delivery, error) {
	ch := s.group.DoChan("list", func() (interface{}, error) {
		return s.api.List(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("list deliveries: %w", res.Err)
		}
		rows := res.Val.([]Delivery)
		out := make([]Delivery, len(rows))
		copy(out, rows)
		return out, nil
	}
}

// Find looks a delivery up by identifier in the current collection.
func (s *Service) Find(ctx context.Context, id int64) (Delivery, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Delivery{}, err
	}
	for _, d := range all {
		if d.Key() == id && d.Persisted() {
			return d, nil
		}
	}
	return Delivery{}, ErrNotFound
}

// Save creates d when it has no identifier and updates it otherwise.
// The boolean reports whether a create happened.
func (s *Service) Save(ctx context.Context, d Delivery) (Delivery, bool, error) {
	if err := Validate(d); err != nil {
		return Delivery{}, false, err
	}

	if !d.Persisted() {
		saved, err := s.api.Create(ctx, d)
		if err != nil {
			return Delivery{}, true, fmt.Errorf("create delivery: %w", err)
		}
		s.record(ctx, "delivery.create", saved, nil)
		return saved, true, nil
	}

	id := d.Key()
	saved, err := s.api.Update(ctx, id, d)
	if err != nil {
		return Delivery{}, false, fmt.Errorf("update delivery %d: %w", id, err)
	}
	s.record(ctx, "delivery.update", saved, nil)
	return saved, false, nil
}

// Delete removes the delivery identified by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotPersisted
	}
	if err := s.api.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete delivery %d: %w", id, err)
	}
	s.record(ctx, "delivery.delete", Delivery{}.WithID(id), nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, d Delivery, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if d.RequestedAt != "" {
		meta["requested_at"] = string(d.RequestedAt)
		meta["destination"] = d.DestinationLocation
		meta["item"] = d.ItemName
	}
	entityID := "unknown"
	if d.Persisted() {
		entityID = strconv.FormatInt(d.Key(), 10)
	}
	actor := ""
	if sess := shared.SessionFromContext(ctx); sess != nil {
		actor = sess.ID
	}
	entry := shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "delivery",
		EntityID: entityID,
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
