// Package domain defines the persistence models for chat turns, chat sessions,
// user profiles, teams, events and prompt configuration. These types are
// mapped with GORM and form the core data layer of the hackathon backend.
package domain

import "time"

// ChatMessage is a single recorded chat turn. Rows are written once and never
// updated or deleted.
//
// Fields:
//   - ID: auto-increment primary key.
//   - CallerID: opaque caller identity (usually a normalized client IP).
//   - SessionToken: optional client-chosen token grouping turns into a session.
//   - Body: full message text.
//   - Role: "user" or "bot" (enforced by DB constraint).
//   - SentAt: write time (UTC).
//   - ClientAgent: optional User-Agent of the caller.
//   - BodyLength: rune count of Body, cached for analytics.
type ChatMessage struct {
	ID           uint      `json:"id"                      gorm:"primaryKey;autoIncrement"`
	CallerID     string    `json:"caller_id"               gorm:"type:varchar(128);not null;index:idx_chat_messages_caller,priority:1"`
	SessionToken *string   `json:"session_token,omitempty" gorm:"type:varchar(128);index:idx_chat_messages_session,priority:1"`
	Body         string    `json:"body"                    gorm:"type:text;not null"`
	Role         Role      `json:"role"                    gorm:"type:varchar(8);not null;check:role IN ('user','bot')"`
	SentAt       time.Time `json:"sent_at"                 gorm:"not null;index;index:idx_chat_messages_caller,priority:2;index:idx_chat_messages_session,priority:2"`
	ClientAgent  *string   `json:"client_agent,omitempty"  gorm:"type:varchar(512)"`
	BodyLength   int       `json:"body_length"             gorm:"not null"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// ChatSession aggregates the turns recorded under one session token.
// MessageCount always equals the number of ChatMessage rows carrying the token.
type ChatSession struct {
	ID           uint      `json:"id"                     gorm:"primaryKey;autoIncrement"`
	CallerID     string    `json:"caller_id"              gorm:"type:varchar(128);not null;index"`
	SessionToken string    `json:"session_token"          gorm:"type:varchar(128);not null;uniqueIndex:ux_chat_sessions_token"`
	FirstSeen    time.Time `json:"first_seen"             gorm:"not null"`
	LastSeen     time.Time `json:"last_seen"              gorm:"not null"`
	MessageCount int       `json:"message_count"          gorm:"not null"`
	ClientAgent  *string   `json:"client_agent,omitempty" gorm:"type:varchar(512)"`
}

// TableName returns the database table name for ChatSession.
func (ChatSession) TableName() string { return "chat_sessions" }

// UserProfile is the self-declared identity attached to a caller. There is at
// most one profile per CallerID; re-registering overwrites the mutable fields
// while keeping ID and CreatedAt.
type UserProfile struct {
	ID          uint      `json:"id"              gorm:"primaryKey;autoIncrement"`
	CallerID    string    `json:"caller_id"       gorm:"type:varchar(128);not null;uniqueIndex:ux_user_profiles_caller"`
	DisplayName string    `json:"display_name"    gorm:"type:varchar(255);not null"`
	TeamName    string    `json:"team_name"       gorm:"type:varchar(255);not null"`
	Email       *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	Role        *string   `json:"role,omitempty"  gorm:"type:varchar(64)"`
	CreatedAt   time.Time `json:"created_at"      gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `json:"updated_at"      gorm:"autoUpdateTime:false"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string { return "user_profiles" }
