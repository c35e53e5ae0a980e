// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation and caller IDs, logging/redaction, panic recovery,
// metrics, compression, CORS, security headers, idempotency, rate limiting
// and the admin gate.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/config"
	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/http/handlers"
	"github.com/tbourn/hackathon-backend/internal/http/middleware"
	"github.com/tbourn/hackathon-backend/internal/services"
)

// Deps are the collaborators built by the caller of RegisterRoutes.
type Deps struct {
	DB  *gorm.DB
	LLM services.Completer
	// Redis switches rate limiting to a shared fixed window; nil keeps the
	// in-process token bucket.
	Redis redis.Cmdable
	// Idempotency is shared with the background purger; nil builds one.
	Idempotency *services.IdempotencyService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. CallerID: resolve the caller from proxy headers
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Gzip
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per caller, bypass on replay)
//  11. CORS and Security headers
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	if err := handlers.RegisterValidators(); err != nil {
		log.Error().Err(err).Msg("register binding validators")
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.CallerID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Dependency injection: services ← db/inference
	idem := d.Idempotency
	if idem == nil {
		idem = &services.IdempotencyService{DB: d.DB, TTL: cfg.IdempotencyTTL}
	}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.Lookup))

	if d.Redis != nil {
		rl := middleware.NewRedisLimiter(d.Redis, middleware.WindowLimit(cfg.RateRPS, cfg.RateBurst), time.Second, middleware.KeyByCaller())
		r.Use(rl.Handler())
	} else {
		rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByCaller())
		r.Use(rl.Handler())
	}

	useCORS(r, cfg.CORS.AllowedOrigins)

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		NoStore:       false,
		EnablePolicy:  true,
		ExposeHeaders: []string{"ETag", handlers.HeaderIdempotencyReplayed},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	msgs := &services.MessageService{
		DB:       d.DB,
		OnRecord: func(role domain.Role) { middleware.ObserveChatMessage(string(role)) },
	}
	prompts := services.NewPromptService(d.DB, cfg.PromptCacheTTL)
	h := handlers.New(handlers.Deps{
		Chat: &services.ChatService{
			Messages:    msgs,
			Prompts:     prompts,
			LLM:         d.LLM,
			NewToken:    func() string { return ulid.Make().String() },
			OnInference: middleware.ObserveInference,
		},
		Messages:    msgs,
		Idempotency: idem,
		Teams:       &services.TeamService{DB: d.DB},
		Events:      &services.EventService{DB: d.DB},
		Profiles:    &services.ProfileService{DB: d.DB},
		Prompts:     prompts,
		Seed:        &services.SeedService{DB: d.DB},
	})

	r.GET("/health", h.Health)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Chat
		api.POST("/chat", h.Ask)
		api.POST("/chat/messages", h.PostMessage)
		api.GET("/chat/history", h.History)
		api.GET("/chat/sessions/:token", h.Session)
		api.GET("/chat/analytics", h.Analytics)

		// Public reads
		api.GET("/leaderboard", h.Leaderboard)
		api.GET("/teams/:id", h.GetTeam)
		api.GET("/events", h.ListEvents)
		api.GET("/events/:id", h.GetEvent)
		api.GET("/prompts", h.ListPrompts)
		api.GET("/system-prompts", h.ListSystemPrompts)
		api.GET("/system-prompts/:name", h.GetSystemPrompt)

		// Profile
		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.SaveProfile)
	}

	admin := api.Group("", middleware.RequireAdmin(cfg.AdminCode))
	{
		admin.POST("/teams", h.CreateTeam)
		admin.PUT("/teams/:id/score", h.SetScore)
		admin.POST("/events", h.CreateEvent)
		admin.POST("/events/:id/deactivate", h.DeactivateEvent)
		admin.PUT("/prompts", h.ReplacePrompts)
		admin.PUT("/system-prompts/:name", h.SaveSystemPrompt)
		admin.POST("/admin/seed", h.Seed)
	}
}

// useCORS installs the CORS posture: allow all origins when none are
// configured, otherwise echo allowlisted origins.
func useCORS(r *gin.Engine, origins []string) {
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderAdminCode, middleware.HeaderIdempotencyKey,
	}
	expose := []string{"X-Request-ID", "Content-Length", "ETag", handlers.HeaderIdempotencyReplayed}
	methods := []string{"GET", "POST", "PUT", "OPTIONS"}

	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    expose,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    expose,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody caps the request body size for all endpoints to maxBytes using
// http.MaxBytesReader. Requests exceeding the cap fail on read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
