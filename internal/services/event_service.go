// Package services – EventService
//
// EventService publishes announcements and serves the two read views the UI
// polls: active events ranked by priority, and recent events in plain
// reverse-chronological order. Events are never deleted; deactivation is the
// only state change and it is one-way.
package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/repo"
)

// Event listing defaults.
const (
	DefaultEventLimit  = 10
	MaxEventLimit      = 100
	DefaultRecentHours = 24
	MaxRecentHours     = 24 * 365
	DefaultEventAuthor = "admin"
)

// CreateEventInput describes a new announcement. Zero Kind and Priority fall
// back to info and medium.
type CreateEventInput struct {
	Title       string
	Description string
	Kind        domain.EventKind
	Priority    domain.EventPriority
	StartAt     *time.Time
	EndAt       *time.Time
	CreatedBy   string
}

// EventService manages announcements.
type EventService struct {
	DB    *gorm.DB
	Clock func() time.Time
}

// Create validates in and stores an active event.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*domain.Event, error) {
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	e, err := s.build(in)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event.kind", string(e.Kind)),
		attribute.String("event.priority", string(e.Priority)),
	)
	if err := repo.CreateEvent(ctx, s.DB, e); err != nil {
		return nil, storage(err, nil)
	}
	return e, nil
}

func (s *EventService) build(in CreateEventInput) (*domain.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEventTitleRequired
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, ErrEventDescriptionRequired
	}
	kind := domain.EventKind(strings.ToLower(strings.TrimSpace(string(in.Kind))))
	if kind == "" {
		kind = domain.KindInfo
	}
	if !kind.Valid() {
		return nil, ErrInvalidEventKind
	}
	prio := domain.EventPriority(strings.ToLower(strings.TrimSpace(string(in.Priority))))
	if prio == "" {
		prio = domain.PriorityMedium
	}
	if !prio.Valid() {
		return nil, ErrInvalidPriority
	}
	if in.StartAt != nil && in.EndAt != nil && in.EndAt.Before(*in.StartAt) {
		return nil, ErrEventWindow
	}
	author := strings.TrimSpace(in.CreatedBy)
	if author == "" {
		author = DefaultEventAuthor
	}
	return &domain.Event{
		Title:       title,
		Description: desc,
		Kind:        kind,
		Priority:    prio,
		StartAt:     utcPtr(in.StartAt),
		EndAt:       utcPtr(in.EndAt),
		Active:      true,
		CreatedAt:   nowUTC(s.Clock),
		CreatedBy:   author,
	}, nil
}

// Deactivate hides an event from both read views. Repeating it is harmless.
func (s *EventService) Deactivate(ctx context.Context, id uint) error {
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "Deactivate", trace.WithAttributes(attribute.Int64("event.id", int64(id))))
	defer span.End()

	return storage(repo.DeactivateEvent(ctx, s.DB, id), ErrEventNotFound)
}

// Get returns an event by ID, active or not.
func (s *EventService) Get(ctx context.Context, id uint) (*domain.Event, error) {
	e, err := repo.GetEvent(ctx, s.DB, id)
	if err != nil {
		return nil, storage(err, ErrEventNotFound)
	}
	return e, nil
}

// Active returns active events, most urgent first, newest first within a
// priority.
func (s *EventService) Active(ctx context.Context, limit int) ([]domain.Event, error) {
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "Active", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	out, err := repo.ListActiveEvents(ctx, s.DB, clampLimit(limit, DefaultEventLimit, MaxEventLimit))
	if err != nil {
		return nil, storage(err, nil)
	}
	return out, nil
}

// Recent returns active events created within the trailing hours, newest
// first regardless of priority.
func (s *EventService) Recent(ctx context.Context, hours, limit int) ([]domain.Event, error) {
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "Recent",
		trace.WithAttributes(
			attribute.Int("hours", hours),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if hours <= 0 {
		return nil, ErrInvalidHours
	}
	if hours > MaxRecentHours {
		hours = MaxRecentHours
	}
	since := nowUTC(s.Clock).Add(-time.Duration(hours) * time.Hour)
	out, err := repo.ListRecentEvents(ctx, s.DB, since, clampLimit(limit, DefaultEventLimit, MaxEventLimit))
	if err != nil {
		return nil, storage(err, nil)
	}
	return out, nil
}

// Stats returns a fingerprint of the events table for ETags.
func (s *EventService) Stats(ctx context.Context) (count, active int64, newest *time.Time, err error) {
	count, active, newest, err = repo.EventsStats(ctx, s.DB)
	if err != nil {
		return 0, 0, nil, storage(err, nil)
	}
	return count, active, newest, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
