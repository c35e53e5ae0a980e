// Package services – MessageService
//
// This file implements MessageService, which records chat turns and keeps the
// per-token session aggregate in step with them. A turn and its session upsert
// commit in one transaction, so a session's message_count always equals the
// number of stored turns carrying its token.
//
// Observability: all public methods are OpenTelemetry-instrumented.
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

// History limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
	maxClientAgentRunes = 512
)

// RecordInput describes one chat turn to store.
type RecordInput struct {
	CallerID     string
	Body         string
	Role         domain.Role
	SessionToken *string
	ClientAgent  *string
}

// MessageService records and reads chat turns.
type MessageService struct {
	DB *gorm.DB
	// Clock returns the write time; nil means time.Now.
	Clock func() time.Time
	// OnRecord is called after a turn commits.
	OnRecord func(role domain.Role)
}

// Record validates in and stores the turn. When a session token is present
// the session aggregate is created or bumped in the same transaction.
func (s *MessageService) Record(ctx context.Context, in RecordInput) (*domain.ChatMessage, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("caller.id", in.CallerID),
			attribute.String("message.role", string(in.Role)),
		),
	)
	defer span.End()

	caller := strings.TrimSpace(in.CallerID)
	if caller == "" {
		return nil, ErrMissingCaller
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, ErrEmptyBody
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	token := trimOptional(in.SessionToken)
	agent := clipRunes(trimOptional(in.ClientAgent), maxClientAgentRunes)

	now := nowUTC(s.Clock)
	msg := &domain.ChatMessage{
		CallerID:     caller,
		SessionToken: token,
		Body:         in.Body,
		Role:         in.Role,
		SentAt:       now,
		ClientAgent:  agent,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateMessage(ctx, tx, msg); err != nil {
			return err
		}
		if token != nil {
			return repo.UpsertSession(ctx, tx, caller, *token, agent, now)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, storage(err, nil)
	}
	if s.OnRecord != nil {
		s.OnRecord(msg.Role)
	}
	return msg, nil
}

// Get returns one stored turn by ID.
func (s *MessageService) Get(ctx context.Context, id uint) (*domain.ChatMessage, error) {
	m, err := repo.GetMessage(ctx, s.DB, id)
	if err != nil {
		return nil, storage(err, ErrMessageNotFound)
	}
	return m, nil
}

// History returns a caller's most recent turns, newest first.
func (s *MessageService) History(ctx context.Context, callerID string, limit int) ([]domain.ChatMessage, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("caller.id", callerID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if strings.TrimSpace(callerID) == "" {
		return nil, ErrMissingCaller
	}
	out, err := repo.ListCallerMessages(ctx, s.DB, callerID, clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit))
	if err != nil {
		return nil, storage(err, nil)
	}
	return out, nil
}

// SessionHistory returns a session's turns in conversation order, oldest first.
func (s *MessageService) SessionHistory(ctx context.Context, token string, limit int) ([]domain.ChatMessage, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "SessionHistory",
		trace.WithAttributes(
			attribute.String("session.token", token),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	out, err := repo.ListSessionMessages(ctx, s.DB, token, clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit))
	if err != nil {
		return nil, storage(err, nil)
	}
	return out, nil
}

// Session returns the aggregate for token.
func (s *MessageService) Session(ctx context.Context, token string) (*domain.ChatSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	sess, err := repo.GetSession(ctx, s.DB, token)
	if err != nil {
		return nil, storage(err, ErrSessionNotFound)
	}
	return sess, nil
}

// Analytics summarizes chat usage as of the service clock.
func (s *MessageService) Analytics(ctx context.Context) (*repo.ChatAnalytics, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Analytics")
	defer span.End()

	a, err := repo.LoadChatAnalytics(ctx, s.DB, nowUTC(s.Clock))
	if err != nil {
		return nil, storage(err, nil)
	}
	return a, nil
}

// ---- shared helpers ----

func nowUTC(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

// clampLimit maps limit <= 0 to def and caps it at max.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// trimOptional trims *p and maps nil or blank to nil.
func trimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func clipRunes(p *string, max int) *string {
	if p == nil {
		return nil
	}
	r := []rune(*p)
	if len(r) <= max {
		return p
	}
	v := string(r[:max])
	return &v
}
