package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/http/middleware"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"    example:"healthy"`
	Inference string    `json:"lm_studio" example:"connected"`
	Timestamp time.Time `json:"timestamp"`

	// ActiveEvents is omitted when the store cannot be read.
	ActiveEvents *int64 `json:"active_events,omitempty" example:"3"`
}

// Seed godoc
// @ID          seedDemo
// @Summary     Load demo data
// @Description Creates the demo teams (skipping names that exist) and demo events. Admin only.
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Code  header  string  false  "Admin code"
// @Success     200  {object}  services.SeedResult
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid admin code"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /admin/seed [post]
func (h *Handlers) Seed(c *gin.Context) {
	res, err := h.seed.SeedDemo(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().
		Int("teams_created", res.TeamsCreated).
		Int("teams_skipped", res.TeamsSkipped).
		Int("events_created", res.EventsCreated).
		Msg("demo data seeded")
	ok(c, http.StatusOK, res)
}

// Health godoc
// @ID          health
// @Summary     Liveness and inference status
// @Description Always 200 while the process serves requests; lm_studio reports whether the inference server answers.
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ctx := c.Request.Context()
	resp := HealthResponse{
		Status:    "healthy",
		Inference: h.chat.InferenceStatus(ctx),
		Timestamp: h.now(),
	}
	if _, active, _, err := h.events.Stats(ctx); err == nil {
		resp.ActiveEvents = &active
	} else {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("health: event stats unavailable")
	}
	ok(c, http.StatusOK, resp)
}
