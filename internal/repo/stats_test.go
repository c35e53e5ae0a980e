package repo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func strptr(s string) *string { return &s }

func seedMessage(t *testing.T, db *gorm.DB, caller string, token *string, body string, role domain.Role, at time.Time) *domain.ChatMessage {
	t.Helper()
	m := &domain.ChatMessage{CallerID: caller, SessionToken: token, Body: body, Role: role, SentAt: at}
	if err := CreateMessage(context.Background(), db, m); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	return m
}

func TestLoadChatAnalytics_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, err := LoadChatAnalytics(context.Background(), db, time.Now().UTC()); err == nil {
		t.Fatalf("expected error due to missing chat_messages table")
	}
}

func TestLoadChatAnalytics_Empty(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	a, err := LoadChatAnalytics(context.Background(), db, time.Now().UTC())
	if err != nil {
		t.Fatalf("LoadChatAnalytics: %v", err)
	}
	if a.UniqueCallers != 0 || a.UniqueSessions != 0 || a.TotalMessages != 0 || a.AvgBodyLength != 0 || a.LastHour != 0 {
		t.Fatalf("expected zeros, got %+v", a)
	}
	if a.TopCallers == nil || len(a.TopCallers) != 0 {
		t.Fatalf("expected empty (non-nil) top callers, got %#v", a.TopCallers)
	}
}

func TestLoadChatAnalytics_Populated(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	now := time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)

	s1, s2, s3 := strptr("s1"), strptr("s2"), strptr("s3")
	seedMessage(t, db, "alice", s1, "ab", domain.RoleUser, now.Add(-2*time.Hour))
	seedMessage(t, db, "alice", s1, "abcd", domain.RoleBot, now.Add(-30*time.Minute))
	seedMessage(t, db, "alice", nil, "abcdef", domain.RoleUser, now.Add(-10*time.Minute))
	seedMessage(t, db, "bob", s2, "a", domain.RoleUser, now.Add(-3*time.Hour))
	seedMessage(t, db, "bob", s2, "ab", domain.RoleBot, now.Add(-2*time.Hour))
	seedMessage(t, db, "bob", nil, "abc", domain.RoleUser, now.Add(-time.Minute))
	seedMessage(t, db, "carol", s3, "abcdefgh", domain.RoleUser, now.Add(-5*time.Hour))

	a, err := LoadChatAnalytics(context.Background(), db, now)
	if err != nil {
		t.Fatalf("LoadChatAnalytics: %v", err)
	}
	if a.UniqueCallers != 3 || a.UniqueSessions != 3 || a.TotalMessages != 7 {
		t.Fatalf("unexpected counts: %+v", a)
	}
	if math.Abs(a.AvgBodyLength-26.0/7.0) > 1e-9 {
		t.Fatalf("avg body length = %v; want %v", a.AvgBodyLength, 26.0/7.0)
	}
	if a.LastHour != 3 {
		t.Fatalf("last hour = %d; want 3", a.LastHour)
	}

	if len(a.TopCallers) != 3 {
		t.Fatalf("top callers len = %d; want 3", len(a.TopCallers))
	}
	// alice and bob tie on 3; caller id breaks the tie.
	want := []struct {
		id   string
		n    int64
		last time.Time
	}{
		{"alice", 3, now.Add(-10 * time.Minute)},
		{"bob", 3, now.Add(-time.Minute)},
		{"carol", 1, now.Add(-5 * time.Hour)},
	}
	for i, w := range want {
		got := a.TopCallers[i]
		if got.CallerID != w.id || got.MessageCount != w.n || !got.LastSentAt.Equal(w.last) {
			t.Fatalf("top[%d] = %+v; want %s/%d/%v", i, got, w.id, w.n, w.last)
		}
	}
}

func TestLoadChatAnalytics_TopCallersCappedAtTen(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	now := time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		seedMessage(t, db, fmt.Sprintf("caller-%02d", i), nil, "x", domain.RoleUser, now.Add(-time.Duration(i)*time.Minute))
	}
	a, err := LoadChatAnalytics(context.Background(), db, now)
	if err != nil {
		t.Fatalf("LoadChatAnalytics: %v", err)
	}
	if len(a.TopCallers) != TopCallersLimit {
		t.Fatalf("top callers len = %d; want %d", len(a.TopCallers), TopCallersLimit)
	}
	if a.TopCallers[0].CallerID != "caller-00" || a.TopCallers[9].CallerID != "caller-09" {
		t.Fatalf("unexpected tie ordering: first=%s last=%s", a.TopCallers[0].CallerID, a.TopCallers[9].CallerID)
	}
}

func TestTeamsStats_ZeroAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Team{})

	count, maxAt, err := TeamsStats(context.Background(), db)
	if err != nil || count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil, nil), got (%d, %v, %v)", count, maxAt, err)
	}

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	for i, at := range []time.Time{t1, t2} {
		team := &domain.Team{TeamName: fmt.Sprintf("T%d", i), Members: []string{"m"}, CreatedAt: at, UpdatedAt: at}
		if err := CreateTeam(context.Background(), db, team); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}

	count, maxAt, err = TeamsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("TeamsStats: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected (2, %v), got (%d, %v)", t2, count, maxAt)
	}
}

func TestTeamsStats_MaxIndependentOfInsertOrder(t *testing.T) {
	db := newTestDB(t, &domain.Team{})
	ctx := context.Background()
	newest := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{newest, newest.Add(-time.Hour), newest.Add(-2 * time.Hour)} {
		team := &domain.Team{TeamName: fmt.Sprintf("Team %d", i), Members: []string{"m"}, CreatedAt: at, UpdatedAt: at}
		if err := CreateTeam(ctx, db, team); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}

	// repeated calls must not carry conditions over from the count query
	for i := 0; i < 2; i++ {
		count, maxAt, err := TeamsStats(ctx, db)
		if err != nil || count != 3 || maxAt == nil || !maxAt.Equal(newest) {
			t.Fatalf("call %d: got (%d, %v, %v), want (3, %v)", i, count, maxAt, err, newest)
		}
	}
}

func TestEventsStats_CountsActive(t *testing.T) {
	db := newTestDB(t, &domain.Event{})
	t1 := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	for _, at := range []time.Time{t1, t2} {
		ev := &domain.Event{Title: "t", Description: "d", Kind: domain.KindInfo, Priority: domain.PriorityLow, Active: true, CreatedAt: at, CreatedBy: "admin"}
		if err := CreateEvent(context.Background(), db, ev); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := DeactivateEvent(context.Background(), db, 1); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	count, active, maxAt, err := EventsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("EventsStats: %v", err)
	}
	if count != 2 || active != 1 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("unexpected (%d, %d, %v)", count, active, maxAt)
	}
}
