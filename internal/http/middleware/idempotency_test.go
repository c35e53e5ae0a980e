package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIdempotencyHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/raw/path", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key when not set")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false by default")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, uint(7))
	if id, ok := ReplayMessageID(c); !ok || id != 7 || !IsReplay(c) {
		t.Fatalf("ReplayMessageID = %d, %v", id, ok)
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-uint replay value must read as false")
	}
	if got := IdempotencyScope(c); got != "/raw/path" {
		t.Fatalf("scope fallback = %q", got)
	}
}

func TestIdempotencyValidator_NoHeader_NoLookupCalled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	called := false
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (uint, bool, error) {
		called = true
		return 0, false, nil
	}))
	r.POST("/chat/messages", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("key should not be present when header missing")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat/messages", nil))
	if w.Code != http.StatusNoContent || called {
		t.Fatalf("code=%d lookupCalled=%v", w.Code, called)
	}
}

func TestIdempotencyValidator_InvalidKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"too long", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
		{"default pattern rejects spaces", IdempotencyOptions{}, "has space"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(IdempotencyValidator(tc.opts, nil))
			r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			req.Header.Set(HeaderIdempotencyKey, tc.key)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "bad_idempotency_key" {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestIdempotencyValidator_LookupMissHitAndError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(t *testing.T, lookup IdempotencyLookup, check func(*gin.Context)) {
		t.Helper()
		r := gin.New()
		r.Use(CallerID(), IdempotencyValidator(IdempotencyOptions{}, lookup))
		r.POST("/chat/messages", func(c *gin.Context) {
			check(c)
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chat/messages", nil)
		req.Header.Set(HeaderIdempotencyKey, "k-9")
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}

	t.Run("miss", func(t *testing.T) {
		run(t, func(_ context.Context, caller, scope, key string, now time.Time) (uint, bool, error) {
			if caller != "203.0.113.9" || scope != "/chat/messages" || key != "k-9" || now.IsZero() {
				t.Fatalf("lookup args: %q %q %q %v", caller, scope, key, now)
			}
			return 0, false, nil
		}, func(c *gin.Context) {
			if IsReplay(c) || IsRateBypass(c) {
				t.Fatalf("no replay expected on miss")
			}
			if k, _ := GetIdempotencyKey(c); k != "k-9" {
				t.Fatalf("key not stashed")
			}
		})
	})

	t.Run("hit", func(t *testing.T) {
		run(t, func(context.Context, string, string, string, time.Time) (uint, bool, error) {
			return 42, true, nil
		}, func(c *gin.Context) {
			if id, ok := ReplayMessageID(c); !ok || id != 42 || !IsRateBypass(c) {
				t.Fatalf("expected replay of 42 with bypass")
			}
		})
	})

	t.Run("error is a miss", func(t *testing.T) {
		run(t, func(context.Context, string, string, string, time.Time) (uint, bool, error) {
			return 0, false, errors.New("db down")
		}, func(c *gin.Context) {
			if IsReplay(c) {
				t.Fatalf("lookup error must not mark replay")
			}
		})
	})
}
