// Package services – PromptService
//
// PromptService owns the quick-start prompt set and the named system prompts.
//
//   - The prompt set is replaced wholesale; the five built-in prompts are
//     seeded the first time the table is read while it holds no rows at all.
//   - System prompts are upserted by name. The "default" prompt always
//     resolves: a missing row is seeded from DefaultSystemPrompt, and a
//     disabled row falls back to it without being written.
//   - Resolved system prompt content is cached in-process and evicted on save.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/repo"
)

// PromptInput is one entry of a prompt set. Nil Active means true; nil
// SortOrder means the entry's position in the list.
type PromptInput struct {
	Title     string
	Body      string
	IconTag   string
	Active    *bool
	SortOrder *int
}

// PromptService manages quick-start prompts and system prompts.
type PromptService struct {
	DB    *gorm.DB
	Clock func() time.Time
	// Cache holds resolved system prompt content by name; nil disables it.
	Cache *cache.Cache
}

// NewPromptService builds a PromptService whose system prompt cache keeps
// entries for ttl. A ttl of zero disables caching.
func NewPromptService(db *gorm.DB, ttl time.Duration) *PromptService {
	s := &PromptService{DB: db}
	if ttl > 0 {
		s.Cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// List returns the active prompts in display order, seeding the defaults if
// the table is empty.
func (s *PromptService) List(ctx context.Context) ([]domain.Prompt, error) {
	tr := otel.Tracer("services/PromptService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	n, err := repo.CountPrompts(ctx, s.DB)
	if err != nil {
		return nil, storage(err, nil)
	}
	if n == 0 {
		span.AddEvent("seed default prompts")
		if err := s.seedDefaults(ctx); err != nil {
			// Another writer may have filled the table meanwhile.
			if out, rerr := repo.ListActivePrompts(ctx, s.DB); rerr == nil && len(out) > 0 {
				return out, nil
			}
			return nil, storage(err, nil)
		}
	}
	out, err := repo.ListActivePrompts(ctx, s.DB)
	if err != nil {
		return nil, storage(err, nil)
	}
	return out, nil
}

func (s *PromptService) seedDefaults(ctx context.Context) error {
	rows, _ := buildPrompts(DefaultPrompts, nowUTC(s.Clock))
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.CountPrompts(ctx, tx)
		if err != nil || n > 0 {
			return err
		}
		return repo.InsertPrompts(ctx, tx, rows)
	})
}

// Replace swaps the whole prompt set for items in one transaction and
// returns the resulting active prompts. Nothing is written if any item is
// invalid.
func (s *PromptService) Replace(ctx context.Context, items []PromptInput) ([]domain.Prompt, error) {
	tr := otel.Tracer("services/PromptService")
	ctx, span := tr.Start(ctx, "Replace", trace.WithAttributes(attribute.Int("prompts.count", len(items))))
	defer span.End()

	rows, err := buildPrompts(items, nowUTC(s.Clock))
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.ReplacePrompts(ctx, tx, rows)
	}); err != nil {
		return nil, storage(err, nil)
	}
	out, err := repo.ListActivePrompts(ctx, s.DB)
	if err != nil {
		return nil, storage(err, nil)
	}
	return out, nil
}

func buildPrompts(items []PromptInput, now time.Time) ([]domain.Prompt, error) {
	rows := make([]domain.Prompt, 0, len(items))
	for i, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			return nil, validationf("prompt %d: title is required", i+1)
		}
		if strings.TrimSpace(it.Body) == "" {
			return nil, validationf("prompt %d: prompt text is required", i+1)
		}
		active := true
		if it.Active != nil {
			active = *it.Active
		}
		order := i
		if it.SortOrder != nil {
			order = *it.SortOrder
		}
		rows = append(rows, domain.Prompt{
			Title:     title,
			Body:      it.Body,
			IconTag:   strings.TrimSpace(it.IconTag),
			Active:    active,
			SortOrder: order,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return rows, nil
}

// SystemPrompt resolves the content of the named system prompt. An empty
// name means "default".
func (s *PromptService) SystemPrompt(ctx context.Context, name string) (string, error) {
	tr := otel.Tracer("services/PromptService")
	ctx, span := tr.Start(ctx, "SystemPrompt")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultSystemPromptName
	}
	span.SetAttributes(attribute.String("system_prompt.name", name))

	if s.Cache != nil {
		if v, ok := s.Cache.Get(name); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return v.(string), nil
		}
	}

	content, err := s.resolve(ctx, name)
	if err != nil {
		return "", err
	}
	if s.Cache != nil {
		s.Cache.SetDefault(name, content)
	}
	return content, nil
}

func (s *PromptService) resolve(ctx context.Context, name string) (string, error) {
	isDefault := name == domain.DefaultSystemPromptName

	sp, err := repo.GetSystemPrompt(ctx, s.DB, name)
	switch {
	case err == nil:
	case isDefault && errors.Is(err, repo.ErrNotFound):
		sp, err = repo.SeedSystemPrompt(ctx, s.DB, name, DefaultSystemPrompt, nowUTC(s.Clock))
		if err != nil {
			return "", storage(err, nil)
		}
	default:
		return "", storage(err, ErrSystemPromptNotFound)
	}

	if !sp.Active {
		if isDefault {
			return DefaultSystemPrompt, nil
		}
		return "", ErrSystemPromptNotFound
	}
	return sp.Content, nil
}

// SaveSystemPrompt stores content under name as the active version.
func (s *PromptService) SaveSystemPrompt(ctx context.Context, name, content string) (*domain.SystemPrompt, error) {
	tr := otel.Tracer("services/PromptService")
	ctx, span := tr.Start(ctx, "SaveSystemPrompt", trace.WithAttributes(attribute.String("system_prompt.name", name)))
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSystemPromptNameRequired
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrSystemPromptContentRequired
	}
	sp, err := repo.UpsertSystemPrompt(ctx, s.DB, name, content, nowUTC(s.Clock))
	if s.Cache != nil {
		s.Cache.Delete(name)
	}
	if err != nil {
		return nil, storage(err, nil)
	}
	return sp, nil
}

// ListSystemPrompts returns every stored system prompt ordered by name.
func (s *PromptService) ListSystemPrompts(ctx context.Context) ([]domain.SystemPrompt, error) {
	tr := otel.Tracer("services/PromptService")
	ctx, span := tr.Start(ctx, "ListSystemPrompts")
	defer span.End()

	out, err := repo.ListSystemPrompts(ctx, s.DB)
	if err != nil {
		return nil, storage(err, nil)
	}
	return out, nil
}
