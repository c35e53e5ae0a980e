package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/hackathon-backend/internal/http/middleware"
	"github.com/tbourn/hackathon-backend/internal/inference"
	"github.com/tbourn/hackathon-backend/internal/repo"
	"github.com/tbourn/hackathon-backend/internal/services"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeLLM struct {
	reply   string
	err     error
	pingErr error
}

func (f *fakeLLM) Complete(context.Context, []inference.Message) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Ping(context.Context) error { return f.pingErr }

func openDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// stepClock returns start, start+step, start+2*step, ...
func stepClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		at := start.Add(time.Duration(n) * step)
		n++
		return at
	}
}

type testEnv struct {
	r  *gin.Engine
	db *gorm.DB
}

// newEnv wires real services over a fresh database. Service writes tick one
// second per call; handler "now" is t0+5m.
func newEnv(t *testing.T, llm services.Completer, migrate bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		t.Fatalf("validators: %v", err)
	}

	db := openDB(t, migrate)
	clock := stepClock(t0, time.Second)
	msgs := &services.MessageService{DB: db, Clock: clock}
	prompts := services.NewPromptService(db, 0)
	prompts.Clock = clock
	idem := &services.IdempotencyService{DB: db, Clock: clock}

	h := New(Deps{
		Chat: &services.ChatService{
			Messages: msgs, Prompts: prompts, LLM: llm,
			NewToken: func() string { return "tok-minted" },
		},
		Messages:    msgs,
		Idempotency: idem,
		Teams:       &services.TeamService{DB: db, Clock: clock},
		Events:      &services.EventService{DB: db, Clock: func() time.Time { return t0 }},
		Profiles:    &services.ProfileService{DB: db, Clock: clock},
		Prompts:     prompts,
		Seed:        &services.SeedService{DB: db, Clock: clock},
		Clock:       func() time.Time { return t0.Add(5 * time.Minute) },
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.CallerID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idem.Lookup))
	r.GET("/health", h.Health)
	api := r.Group("/api/v1")
	api.POST("/chat", h.Ask)
	api.POST("/chat/messages", h.PostMessage)
	api.GET("/chat/history", h.History)
	api.GET("/chat/sessions/:token", h.Session)
	api.GET("/chat/analytics", h.Analytics)
	api.GET("/leaderboard", h.Leaderboard)
	api.POST("/teams", h.CreateTeam)
	api.GET("/teams/:id", h.GetTeam)
	api.PUT("/teams/:id/score", h.SetScore)
	api.GET("/events", h.ListEvents)
	api.GET("/events/:id", h.GetEvent)
	api.POST("/events", h.CreateEvent)
	api.POST("/events/:id/deactivate", h.DeactivateEvent)
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.SaveProfile)
	api.GET("/prompts", h.ListPrompts)
	api.PUT("/prompts", h.ReplacePrompts)
	api.GET("/system-prompts", h.ListSystemPrompts)
	api.GET("/system-prompts/:name", h.GetSystemPrompt)
	api.PUT("/system-prompts/:name", h.SaveSystemPrompt)
	api.POST("/admin/seed", h.Seed)
	return &testEnv{r: r, db: db}
}

// do sends body (marshalled unless nil) as caller ip and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, ip string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, isRaw := body.(string); isRaw {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code=%q want %q", er.Code, code)
	}
	if er.RequestID == "" {
		t.Fatalf("missing request_id")
	}
	return er
}
