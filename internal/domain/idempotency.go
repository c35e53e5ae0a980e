package domain

import "time"

// Idempotency records the message produced by a previously processed POST,
// keyed by (caller_id, scope, key). Scope is the route template, so the same
// key may be reused across different endpoints. A retried request with the
// same triple replays MessageID instead of writing a second row.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	CallerID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_caller_scope_key,priority:1"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_caller_scope_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_caller_scope_key,priority:3"`
	MessageID uint      `gorm:"type:INTEGER NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
