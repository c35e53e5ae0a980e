package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/tbourn/hackathon-backend/docs"
	"github.com/tbourn/hackathon-backend/internal/config"
	"github.com/tbourn/hackathon-backend/internal/http/handlers"
	"github.com/tbourn/hackathon-backend/internal/http/middleware"
	"github.com/tbourn/hackathon-backend/internal/inference"
	"github.com/tbourn/hackathon-backend/internal/repo"
)

type stubLLM struct{}

func (stubLLM) Complete(context.Context, []inference.Message) (string, error) { return "ok", nil }
func (stubLLM) Ping(context.Context) error { return nil }

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		RateRPS:        100,
		RateBurst:      100,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config, rdb redis.Cmdable) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Deps{DB: newTestDB(t), LLM: stubLLM{}, Redis: rdb}, cfg)
	return r
}

func serve(r *gin.Engine, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return body.Code
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newRouter(t, baseConfig(), nil)

	w := serve(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"healthy"`) {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	w = serve(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	w = serve(r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound || errCode(t, w) != handlers.ErrCodeNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	w = serve(r, http.MethodPost, "/health", "")
	if w.Code != http.StatusMethodNotAllowed || errCode(t, w) != handlers.ErrCodeMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := baseConfig()
	cfg.CORS.AllowedOrigins = []string{"http://example.com"}
	r := newRouter(t, cfg, nil)

	w := serve(r, http.MethodGet, "/health", "", "Origin", "http://example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := serve(r, http.MethodGet, path, "")
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

// Smoke test that a request traverses the whole pipeline.
func TestPipeline_Smoke(t *testing.T) {
	cfg := baseConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	r := newRouter(t, cfg, nil)

	w := serve(r, http.MethodGet, "/api/v1/leaderboard", "", "X-Forwarded-Proto", "https")
	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /leaderboard = %d", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
	if got := w.Header().Get("Strict-Transport-Security"); !strings.HasPrefix(got, "max-age=3600") {
		t.Fatalf("HSTS=%q", got)
	}
	if exp := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(exp, "ETag") {
		t.Fatalf("ETag not exposed: %q", exp)
	}
	if w.Header().Get("ETag") == "" {
		t.Fatalf("leaderboard ETag missing")
	}
}

func TestRegisterRoutes_AdminGate(t *testing.T) {
	cfg := baseConfig()
	cfg.AdminCode = "s3cret"
	r := newRouter(t, cfg, nil)
	body := `{"team_name":"Alpha","members":["a"]}`

	w := serve(r, http.MethodPost, "/api/v1/teams", body)
	if w.Code != http.StatusUnauthorized || errCode(t, w) != handlers.ErrCodeUnauthorized {
		t.Fatalf("no code: %d %s", w.Code, w.Body.String())
	}
	w = serve(r, http.MethodPost, "/api/v1/teams", body, middleware.HeaderAdminCode, "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong code: %d", w.Code)
	}
	w = serve(r, http.MethodPost, "/api/v1/teams", body, middleware.HeaderAdminCode, "s3cret")
	if w.Code != http.StatusCreated {
		t.Fatalf("right code: %d %s", w.Code, w.Body.String())
	}

	// public reads stay open
	if w := serve(r, http.MethodGet, "/api/v1/leaderboard", ""); w.Code != http.StatusOK {
		t.Fatalf("leaderboard: %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/api/v1/admin/seed", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("seed without code: %d", w.Code)
	}
}

func TestRegisterRoutes_AdminOpenWithoutCode(t *testing.T) {
	r := newRouter(t, baseConfig(), nil)
	if w := serve(r, http.MethodPost, "/api/v1/admin/seed", ""); w.Code != http.StatusOK {
		t.Fatalf("seed: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_IdempotentRecord(t *testing.T) {
	r := newRouter(t, baseConfig(), nil)
	body := `{"body":"hello","role":"user"}`

	w := serve(r, http.MethodPost, "/api/v1/chat/messages", body, middleware.HeaderIdempotencyKey, "key-1", "X-Forwarded-For", "10.1.1.1")
	if w.Code != http.StatusCreated {
		t.Fatalf("first: %d %s", w.Code, w.Body.String())
	}
	w = serve(r, http.MethodPost, "/api/v1/chat/messages", body, middleware.HeaderIdempotencyKey, "key-1", "X-Forwarded-For", "10.1.1.1")
	if w.Code != http.StatusOK || w.Header().Get(handlers.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay: %d replayed=%q", w.Code, w.Header().Get(handlers.HeaderIdempotencyReplayed))
	}

	w = serve(r, http.MethodPost, "/api/v1/chat/messages", body, middleware.HeaderIdempotencyKey, "bad key!")
	if w.Code != http.StatusBadRequest || errCode(t, w) != "bad_idempotency_key" {
		t.Fatalf("bad key: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_RateLimitedPerCaller(t *testing.T) {
	cfg := baseConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r := newRouter(t, cfg, nil)

	if w := serve(r, http.MethodGet, "/api/v1/prompts", "", "X-Forwarded-For", "10.2.2.2"); w.Code != http.StatusOK {
		t.Fatalf("first: %d", w.Code)
	}
	w := serve(r, http.MethodGet, "/api/v1/prompts", "", "X-Forwarded-For", "10.2.2.2")
	if w.Code != http.StatusTooManyRequests || errCode(t, w) != handlers.ErrCodeRateLimited {
		t.Fatalf("second: %d %s", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodGet, "/api/v1/prompts", "", "X-Forwarded-For", "10.3.3.3"); w.Code != http.StatusOK {
		t.Fatalf("other caller: %d", w.Code)
	}
}

func TestRegisterRoutes_RedisLimiterFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	r := newRouter(t, baseConfig(), rdb)
	if w := serve(r, http.MethodGet, "/api/v1/prompts", ""); w.Code != http.StatusOK {
		t.Fatalf("redis down must not block: %d", w.Code)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := baseConfig()
	r := newRouter(t, cfg, nil)
	if w := serve(r, http.MethodGet, "/swagger/index.html", ""); w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled: %d", w.Code)
	}

	cfg.SwaggerEnabled = true
	r = newRouter(t, cfg, nil)
	if w := serve(r, http.MethodGet, "/swagger/doc.json", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/leaderboard") {
		t.Fatalf("swagger doc: %d", w.Code)
	}
}
