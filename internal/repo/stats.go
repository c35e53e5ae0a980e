// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries: chat usage analytics
// and small count/last-modified pairs the HTTP layer turns into ETags.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

// TopCallersLimit is how many callers ChatAnalytics ranks.
const TopCallersLimit = 10

// CallerActivity is one row of the top-callers ranking.
type CallerActivity struct {
	CallerID     string    `json:"caller_id"`
	MessageCount int64     `json:"message_count"`
	LastSentAt   time.Time `json:"last_sent_at"`
}

// ChatAnalytics summarizes the chat_messages table.
type ChatAnalytics struct {
	UniqueCallers  int64            `json:"unique_callers"`
	UniqueSessions int64            `json:"unique_sessions"`
	TotalMessages  int64            `json:"total_messages"`
	AvgBodyLength  float64          `json:"avg_body_length"`
	LastHour       int64            `json:"messages_last_hour"`
	TopCallers     []CallerActivity `json:"top_callers"`
}

// LoadChatAnalytics computes usage analytics relative to now. On an empty
// table every figure is zero and TopCallers is empty (never nil).
func LoadChatAnalytics(ctx context.Context, db *gorm.DB, now time.Time) (*ChatAnalytics, error) {
	base := func() *gorm.DB { return db.WithContext(ctx).Model(&domain.ChatMessage{}) }
	out := &ChatAnalytics{TopCallers: []CallerActivity{}}

	if err := base().Select("COUNT(DISTINCT caller_id)").Scan(&out.UniqueCallers).Error; err != nil {
		return nil, err
	}
	if err := base().Select("COUNT(DISTINCT session_token)").Scan(&out.UniqueSessions).Error; err != nil {
		return nil, err
	}
	if err := base().Count(&out.TotalMessages).Error; err != nil {
		return nil, err
	}
	if out.TotalMessages == 0 {
		return out, nil
	}
	if err := base().Select("COALESCE(AVG(body_length), 0)").Scan(&out.AvgBodyLength).Error; err != nil {
		return nil, err
	}
	if err := base().Where("sent_at >= ?", now.Add(-time.Hour)).Count(&out.LastHour).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		CallerID     string
		MessageCount int64
	}
	if err := base().
		Select("caller_id, COUNT(*) AS message_count").
		Group("caller_id").
		Order("message_count DESC, caller_id ASC").
		Limit(TopCallersLimit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		// Latest sent_at per caller (avoid MAX() -> TEXT in SQLite)
		var last struct {
			SentAt time.Time
		}
		if err := base().Select("sent_at").Where("caller_id = ?", r.CallerID).
			Order("sent_at DESC").Limit(1).Scan(&last).Error; err != nil {
			return nil, err
		}
		out.TopCallers = append(out.TopCallers, CallerActivity{
			CallerID:     r.CallerID,
			MessageCount: r.MessageCount,
			LastSentAt:   last.SentAt,
		})
	}
	return out, nil
}

// TeamsStats returns the number of teams and the greatest UpdatedAt among
// them. When there are no teams, count is 0 and maxUpdatedAt is nil.
func TeamsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = db.WithContext(ctx).Model(&domain.Team{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}
	var row struct {
		UpdatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.Team{}).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// EventsStats returns the number of events and the newest CreatedAt.
// Deactivation does not move CreatedAt, so callers should also fold in the
// active count when deriving a validator.
func EventsStats(ctx context.Context, db *gorm.DB) (count, active int64, maxCreatedAt *time.Time, err error) {
	if err = db.WithContext(ctx).Model(&domain.Event{}).Count(&count).Error; err != nil {
		return 0, 0, nil, err
	}
	if count == 0 {
		return 0, 0, nil, nil
	}
	if err = db.WithContext(ctx).Model(&domain.Event{}).Where("active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, nil, err
	}
	var row struct {
		CreatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.Event{}).Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, nil, err
	}
	return count, active, &row.CreatedAt, nil
}
