// Package handlers provides the HTTP handlers of the public API.
//
// Every error leaves through fail() as an ErrorResponse with a stable code,
// and every service error is translated by failErr() from its kind:
//
//	validation          → 400 bad_request
//	conflict            → 409 conflict
//	not found           → 404 not_found
//	storage unavailable → 503 storage_unavailable
//	anything else       → 500 internal_error
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/http/middleware"
	"github.com/tbourn/hackathon-backend/internal/services"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"team not found"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail() for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr maps a service error onto the envelope. The cause of storage and
// unknown errors is logged, never sent to the client.
func failErr(c *gin.Context, err error) {
	var se *services.Error
	msg := "internal server error"
	if errors.As(err, &se) {
		msg = se.Message()
	}
	switch {
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, msg)
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msg)
	case errors.Is(err, services.ErrStorageUnavailable):
		middleware.LoggerFrom(c).Error().Err(err).Msg("storage failure")
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, msg)
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("unexpected error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
