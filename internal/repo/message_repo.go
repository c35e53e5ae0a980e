// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for chat turns and
// the per-token session aggregate.
package repo

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

// CreateMessage inserts a chat turn. BodyLength is derived from Body here so
// the cached value can never disagree with the stored text.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.ChatMessage) error {
	m.BodyLength = utf8.RuneCountInString(m.Body)
	return db.WithContext(ctx).Create(m).Error
}

// GetMessage fetches a chat turn by ID, or ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, id uint) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertSession creates the aggregate for token with message_count=1, or bumps
// message_count and last_seen on an existing one. Call it in the same
// transaction as CreateMessage.
func UpsertSession(ctx context.Context, db *gorm.DB, callerID, token string, clientAgent *string, now time.Time) error {
	s := &domain.ChatSession{
		CallerID:     callerID,
		SessionToken: token,
		FirstSeen:    now,
		LastSeen:     now,
		MessageCount: 1,
		ClientAgent:  clientAgent,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_token"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "message_count"}, Value: gorm.Expr("message_count + 1")},
			{Column: clause.Column{Name: "last_seen"}, Value: now},
		},
	}).Create(s).Error
}

// GetSession returns the aggregate for token, or ErrNotFound.
func GetSession(ctx context.Context, db *gorm.DB, token string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	err := db.WithContext(ctx).Where("session_token = ?", token).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListCallerMessages returns a caller's turns newest first (sent_at DESC, id DESC).
func ListCallerMessages(ctx context.Context, db *gorm.DB, callerID string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.WithContext(ctx).Where("caller_id = ?", callerID).Order("sent_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListSessionMessages returns a session's turns oldest first (sent_at ASC, id ASC).
func ListSessionMessages(ctx context.Context, db *gorm.DB, token string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.WithContext(ctx).Where("session_token = ?", token).Order("sent_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
