// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for announcements.
// Events are never deleted; the only mutation is deactivation.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

// priorityRank orders urgent first; unknown values sort last.
const priorityRank = "CASE priority WHEN 'urgent' THEN 1 WHEN 'high' THEN 2 WHEN 'medium' THEN 3 WHEN 'low' THEN 4 ELSE 5 END"

// CreateEvent inserts e.
func CreateEvent(ctx context.Context, db *gorm.DB, e *domain.Event) error {
	return db.WithContext(ctx).Create(e).Error
}

// GetEvent fetches an event by ID, or ErrNotFound.
func GetEvent(ctx context.Context, db *gorm.DB, id uint) (*domain.Event, error) {
	var e domain.Event
	err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeactivateEvent sets active=false. Deactivating an inactive event is a
// no-op success; an unknown ID yields ErrNotFound.
func DeactivateEvent(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveEvents returns active events by priority rank, then newest first.
func ListActiveEvents(ctx context.Context, db *gorm.DB, limit int) ([]domain.Event, error) {
	var out []domain.Event
	q := db.WithContext(ctx).
		Where("active = ?", true).
		Order(priorityRank + " ASC, created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListRecentEvents returns active events created at or after since, newest
// first. Priority does not participate in this ordering.
func ListRecentEvents(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]domain.Event, error) {
	var out []domain.Event
	q := db.WithContext(ctx).
		Where("active = ? AND created_at >= ?", true, since).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
