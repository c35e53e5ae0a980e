// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for user profiles.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

// UpsertProfile inserts p or, when a profile for p.CallerID exists, overwrites
// its mutable fields. The existing row keeps its ID and CreatedAt. The stored
// row is re-read and returned.
func UpsertProfile(ctx context.Context, db *gorm.DB, p *domain.UserProfile) (*domain.UserProfile, error) {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "caller_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "team_name", "email", "role", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}
	return GetProfile(ctx, db, p.CallerID)
}

// GetProfile fetches the profile for callerID, or ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, callerID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := db.WithContext(ctx).Where("caller_id = ?", callerID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
