package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/http/middleware"
	"github.com/tbourn/hackathon-backend/internal/repo"
	"github.com/tbourn/hackathon-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ChatAPI asks the model on behalf of a caller.
type ChatAPI interface {
	Ask(ctx context.Context, in services.AskInput) (*services.AskResult, error)
	// InferenceStatus reports "connected" or "disconnected".
	InferenceStatus(ctx context.Context) string
}

// MessageAPI records and reads chat turns.
type MessageAPI interface {
	Record(ctx context.Context, in services.RecordInput) (*domain.ChatMessage, error)
	Get(ctx context.Context, id uint) (*domain.ChatMessage, error)
	// History returns the caller's turns, newest first.
	History(ctx context.Context, callerID string, limit int) ([]domain.ChatMessage, error)
	// SessionHistory returns a session's turns, oldest first.
	SessionHistory(ctx context.Context, token string, limit int) ([]domain.ChatMessage, error)
	Session(ctx context.Context, token string) (*domain.ChatSession, error)
	Analytics(ctx context.Context) (*repo.ChatAnalytics, error)
}

// IdempotencyAPI remembers which message an Idempotency-Key produced.
type IdempotencyAPI interface {
	Remember(ctx context.Context, callerID, scope, key string, messageID uint) error
}

// TeamAPI manages teams and the leaderboard.
type TeamAPI interface {
	Create(ctx context.Context, in services.CreateTeamInput) (*domain.Team, error)
	SetScore(ctx context.Context, id uint, score int64) (*domain.Team, error)
	Get(ctx context.Context, id uint) (*domain.Team, error)
	Leaderboard(ctx context.Context, limit int) ([]services.RankedTeam, error)
	// Stats returns the team count and the latest update, for ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// EventAPI manages announcements.
type EventAPI interface {
	Create(ctx context.Context, in services.CreateEventInput) (*domain.Event, error)
	Deactivate(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*domain.Event, error)
	Active(ctx context.Context, limit int) ([]domain.Event, error)
	Recent(ctx context.Context, hours, limit int) ([]domain.Event, error)
	Stats(ctx context.Context) (count, active int64, newest *time.Time, err error)
}

// ProfileAPI manages the caller's profile.
type ProfileAPI interface {
	Upsert(ctx context.Context, in services.ProfileInput) (*domain.UserProfile, error)
	Get(ctx context.Context, callerID string) (*domain.UserProfile, error)
}

// PromptAPI manages quick-start prompts and system prompts.
type PromptAPI interface {
	List(ctx context.Context) ([]domain.Prompt, error)
	Replace(ctx context.Context, items []services.PromptInput) ([]domain.Prompt, error)
	SystemPrompt(ctx context.Context, name string) (string, error)
	SaveSystemPrompt(ctx context.Context, name, content string) (*domain.SystemPrompt, error)
	ListSystemPrompts(ctx context.Context) ([]domain.SystemPrompt, error)
}

// SeedAPI writes demo data.
type SeedAPI interface {
	SeedDemo(ctx context.Context) (*services.SeedResult, error)
}

//
// Handler wiring
//

// Deps lists the services the handlers call. Every field is required.
type Deps struct {
	Chat        ChatAPI
	Messages    MessageAPI
	Idempotency IdempotencyAPI
	Teams       TeamAPI
	Events      EventAPI
	Profiles    ProfileAPI
	Prompts     PromptAPI
	Seed        SeedAPI
	// Clock drives relative times in responses; nil means time.Now.
	Clock func() time.Time
}

// Handlers groups the HTTP endpoints. It depends on the service contracts
// above, never on storage.
type Handlers struct {
	chat   ChatAPI
	msgs   MessageAPI
	idem   IdempotencyAPI
	teams  TeamAPI
	events EventAPI
	prof   ProfileAPI
	prompt PromptAPI
	seed   SeedAPI
	clock  func() time.Time
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Handlers{
		chat:   d.Chat,
		msgs:   d.Messages,
		idem:   d.Idempotency,
		teams:  d.Teams,
		events: d.Events,
		prof:   d.Profiles,
		prompt: d.Prompts,
		seed:   d.Seed,
		clock:  clock,
	}
}

func (h *Handlers) now() time.Time { return h.clock().UTC() }

// clientAgent returns the trimmed User-Agent, or nil when absent.
func clientAgent(c *gin.Context) *string {
	ua := strings.TrimSpace(c.GetHeader("User-Agent"))
	if ua == "" {
		return nil
	}
	return &ua
}

// caller is the identity set by middleware.CallerID.
func caller(c *gin.Context) string { return middleware.CallerIDFrom(c) }
