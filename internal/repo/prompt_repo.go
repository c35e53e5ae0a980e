// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for quick-start
// prompts and named system prompts.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

// CountPrompts counts every prompt row, active or not.
func CountPrompts(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Prompt{}).Count(&n).Error
	return n, err
}

// ListActivePrompts returns active prompts by sort_order, then insertion.
func ListActivePrompts(ctx context.Context, db *gorm.DB) ([]domain.Prompt, error) {
	var out []domain.Prompt
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC, created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ReplacePrompts deletes every prompt and inserts rows in order. Run it inside
// a transaction so readers never observe a partial set.
func ReplacePrompts(ctx context.Context, db *gorm.DB, rows []domain.Prompt) error {
	tx := db.WithContext(ctx)
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Prompt{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// InsertPrompts inserts rows without touching existing ones.
func InsertPrompts(ctx context.Context, db *gorm.DB, rows []domain.Prompt) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

// GetSystemPrompt fetches a system prompt by name (active or not), or ErrNotFound.
func GetSystemPrompt(ctx context.Context, db *gorm.DB, name string) (*domain.SystemPrompt, error) {
	var sp domain.SystemPrompt
	err := db.WithContext(ctx).Where("name = ?", name).First(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// UpsertSystemPrompt stores content under name, marks it active and refreshes
// updated_at. CreatedAt of an existing row is preserved.
func UpsertSystemPrompt(ctx context.Context, db *gorm.DB, name, content string, now time.Time) (*domain.SystemPrompt, error) {
	sp := &domain.SystemPrompt{
		Name:      name,
		Content:   content,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "active", "updated_at"}),
	}).Create(sp).Error
	if err != nil {
		return nil, err
	}
	return GetSystemPrompt(ctx, db, name)
}

// SeedSystemPrompt inserts content under name only if the name is free, then
// returns whatever row holds the name.
func SeedSystemPrompt(ctx context.Context, db *gorm.DB, name, content string, now time.Time) (*domain.SystemPrompt, error) {
	sp := &domain.SystemPrompt{
		Name:      name,
		Content:   content,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(sp).Error
	if err != nil {
		return nil, err
	}
	return GetSystemPrompt(ctx, db, name)
}

// ListSystemPrompts returns every system prompt ordered by name.
func ListSystemPrompts(ctx context.Context, db *gorm.DB) ([]domain.SystemPrompt, error) {
	var out []domain.SystemPrompt
	err := db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}
