package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

func boolp(b bool) *bool { return &b }
func intp(i int) *int    { return &i }

func TestPromptList_SeedsDefaultsOnce(t *testing.T) {
	svc := &PromptService{DB: newTestDB(t)}
	ctx := context.Background()

	first, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first) != len(DefaultPrompts) {
		t.Fatalf("seeded %d prompts; want %d", len(first), len(DefaultPrompts))
	}
	if first[0].Title != "Topics" || first[0].IconTag != "lightbulb" || first[4].Title != "Best Practices" {
		t.Fatalf("unexpected seed order: %+v", first)
	}

	second, err := svc.List(ctx)
	if err != nil || len(second) != len(first) || second[0].ID != first[0].ID {
		t.Fatalf("second List reseeded: %+v, %v", second, err)
	}
}

func TestPromptList_AllInactiveIsNotReseeded(t *testing.T) {
	svc := &PromptService{DB: newTestDB(t)}
	ctx := context.Background()

	if _, err := svc.Replace(ctx, []PromptInput{{Title: "Hidden", Body: "x", Active: boolp(false)}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no active prompts, got %+v", got)
	}
}

func TestPromptReplace_OrderAndValidation(t *testing.T) {
	svc := &PromptService{DB: newTestDB(t), Clock: fixedClock(time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC))}
	ctx := context.Background()

	out, err := svc.Replace(ctx, []PromptInput{
		{Title: "Second", Body: "b", IconTag: "bolt", SortOrder: intp(2)},
		{Title: "First", Body: "a", IconTag: "rocket", SortOrder: intp(1)},
		{Title: "Off", Body: "c", Active: boolp(false)},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(out) != 2 || out[0].Title != "First" || out[1].Title != "Second" {
		t.Fatalf("unexpected prompts: %+v", out)
	}

	// an invalid item leaves the stored set untouched
	_, err = svc.Replace(ctx, []PromptInput{
		{Title: "Fine", Body: "ok"},
		{Title: "Broken", Body: "   "},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, err := svc.List(ctx)
	if err != nil || len(got) != 2 || got[0].Title != "First" {
		t.Fatalf("set changed after failed replace: %+v, %v", got, err)
	}
}

func TestSystemPrompt_DefaultResolution(t *testing.T) {
	db := newTestDB(t)
	svc := &PromptService{DB: db}
	ctx := context.Background()

	content, err := svc.SystemPrompt(ctx, "")
	if err != nil || content != DefaultSystemPrompt {
		t.Fatalf("default not seeded: %q, %v", content, err)
	}
	list, err := svc.ListSystemPrompts(ctx)
	if err != nil || len(list) != 1 || list[0].Name != domain.DefaultSystemPromptName {
		t.Fatalf("ListSystemPrompts = %+v, %v", list, err)
	}

	if _, err := svc.SaveSystemPrompt(ctx, "default", "Be brief."); err != nil {
		t.Fatalf("SaveSystemPrompt: %v", err)
	}
	if content, _ := svc.SystemPrompt(ctx, "default"); content != "Be brief." {
		t.Fatalf("saved content not served: %q", content)
	}

	if err := db.Model(&domain.SystemPrompt{}).Where("name = ?", "default").Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if content, _ := svc.SystemPrompt(ctx, "default"); content != DefaultSystemPrompt {
		t.Fatalf("inactive default should fall back to built-in, got %q", content)
	}
	rows, err := svc.ListSystemPrompts(ctx)
	if err != nil || rows[0].Content != "Be brief." {
		t.Fatalf("fallback must not overwrite stored row: %+v, %v", rows, err)
	}
}

func TestSystemPrompt_NamedAndValidation(t *testing.T) {
	svc := &PromptService{DB: newTestDB(t)}
	ctx := context.Background()

	if _, err := svc.SystemPrompt(ctx, "judging"); !errors.Is(err, ErrSystemPromptNotFound) {
		t.Fatalf("expected ErrSystemPromptNotFound, got %v", err)
	}
	if _, err := svc.SaveSystemPrompt(ctx, " ", "x"); !errors.Is(err, ErrSystemPromptNameRequired) {
		t.Fatalf("expected ErrSystemPromptNameRequired, got %v", err)
	}
	if _, err := svc.SaveSystemPrompt(ctx, "judging", "\n"); !errors.Is(err, ErrSystemPromptContentRequired) {
		t.Fatalf("expected ErrSystemPromptContentRequired, got %v", err)
	}
	saved, err := svc.SaveSystemPrompt(ctx, "judging", "Score fairly.")
	if err != nil || !saved.Active {
		t.Fatalf("SaveSystemPrompt = %+v, %v", saved, err)
	}
	if content, err := svc.SystemPrompt(ctx, "judging"); err != nil || content != "Score fairly." {
		t.Fatalf("SystemPrompt = %q, %v", content, err)
	}
}

func TestSystemPrompt_CacheEvictedOnSave(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromptService(db, time.Minute)
	ctx := context.Background()

	if _, err := svc.SaveSystemPrompt(ctx, "default", "v1"); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if c, _ := svc.SystemPrompt(ctx, "default"); c != "v1" {
		t.Fatalf("got %q", c)
	}

	// bypass the service: cached value keeps being served
	if err := db.Model(&domain.SystemPrompt{}).Where("name = ?", "default").Update("content", "sneaky").Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if c, _ := svc.SystemPrompt(ctx, "default"); c != "v1" {
		t.Fatalf("expected cached v1, got %q", c)
	}

	if _, err := svc.SaveSystemPrompt(ctx, "default", "v2"); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	if c, _ := svc.SystemPrompt(ctx, "default"); c != "v2" {
		t.Fatalf("expected v2 after save, got %q", c)
	}
}
