package domain

import (
	"testing"
	"time"
)

func TestIdempotency_Migration_Indexes_AndInsert(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasTable(&Idempotency{}) {
		t.Fatalf("expected table %q to exist", Idempotency{}.TableName())
	}
	if !m.HasIndex(&Idempotency{}, "ux_caller_scope_key") {
		t.Fatalf("expected composite index ux_caller_scope_key to exist")
	}

	now := time.Now().UTC()

	// NOT NULL constraints, checked by behavior.
	assertNullRejected := func(col string) {
		t.Helper()
		vals := []any{"x-" + col, "c1", "/api/v1/chat/messages", "k1", 7, 201, now, now.Add(time.Hour)}
		names := []string{"id", "caller_id", "scope", "key", "message_id", "status", "created_at", "expires_at"}
		for i, name := range names {
			if name == col {
				vals[i] = nil
			}
		}
		err := db.Exec(`INSERT INTO idempotency ("id","caller_id","scope","key","message_id","status","created_at","expires_at")
		                VALUES (?,?,?,?,?,?,?,?)`, vals...).Error
		if err == nil {
			t.Fatalf("expected NOT NULL violation when inserting NULL into %q", col)
		}
	}
	for _, col := range []string{"caller_id", "scope", "key", "message_id", "status", "expires_at"} {
		assertNullRejected(col)
	}

	rec := &Idempotency{
		ID:        "id-1",
		CallerID:  "c1",
		Scope:     "/api/v1/chat/messages",
		Key:       "k1",
		MessageID: 7,
		Status:    201,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert valid: %v", err)
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", "id-1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.CallerID != "c1" || got.Key != "k1" || got.MessageID != 7 || got.Status != 201 {
		t.Fatalf("unexpected row: %+v", got)
	}

	// Same key under another scope is a different record.
	other := *rec
	other.ID, other.Scope = "id-2", "/api/v1/other"
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("insert other scope: %v", err)
	}

	err := db.Exec(`INSERT INTO idempotency ("id","caller_id","scope","key","message_id","status","created_at","expires_at")
	                VALUES (?,?,?,?,?,?,?,?)`,
		"id-3", "c1", "/api/v1/chat/messages", "k1", 8, 201, now, now.Add(2*time.Hour)).Error
	if err == nil {
		t.Fatalf("expected UNIQUE constraint violation on (caller_id, scope, key)")
	}
}
