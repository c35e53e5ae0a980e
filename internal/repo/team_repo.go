// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for teams and the
// leaderboard.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

// CreateTeam inserts t. A taken team name yields ErrDuplicate.
func CreateTeam(ctx context.Context, db *gorm.DB, t *domain.Team) error {
	if t.Members == nil {
		t.Members = []string{}
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetTeam fetches a team by ID, or ErrNotFound.
func GetTeam(ctx context.Context, db *gorm.DB, id uint) (*domain.Team, error) {
	var t domain.Team
	err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TeamNameExists reports whether a team with exactly this name is stored.
func TeamNameExists(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Team{}).Where("team_name = ?", name).Count(&n).Error
	return n > 0, err
}

// UpdateTeamScore overwrites the score and refreshes updated_at.
// It returns ErrNotFound if no team has the given ID.
func UpdateTeamScore(ctx context.Context, db *gorm.DB, id uint, score int64, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Team{}).
		Where("id = ?", id).
		Updates(map[string]any{"score": score, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLeaderboard returns teams by score DESC; equal scores rank the team
// that reached the score first (updated_at ASC), then by id.
func ListLeaderboard(ctx context.Context, db *gorm.DB, limit int) ([]domain.Team, error) {
	var out []domain.Team
	q := db.WithContext(ctx).Order("score DESC, updated_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
