// Chat HTTP handlers.
//
// This file exposes REST endpoints for chat turns:
//   - POST   /chat                  (ask the model)
//   - POST   /chat/messages         (record one turn, Idempotency-Key aware)
//   - GET    /chat/history          (caller or session history, chronological)
//   - GET    /chat/sessions/{token} (session aggregate)
//   - GET    /chat/analytics        (usage figures)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/http/middleware"
	"github.com/tbourn/hackathon-backend/internal/services"
	"github.com/tbourn/hackathon-backend/internal/utils"
)

// HeaderIdempotencyReplayed marks a response served from a remembered key.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

//
// DTOs
//

// AskRequest is the JSON payload for POST /chat.
type AskRequest struct {
	// Message is the question; blank is rejected.
	Message string `json:"message" example:"When is the submission deadline?"`
	// SessionToken groups turns; one is minted when omitted.
	SessionToken *string `json:"session_token,omitempty" example:"01J9Z8Q5X2S7M3K4N6P8R0T2V4"`
}

// AskResponse carries the reply. Degraded replies are the fixed fallback
// text shown when the inference server is unreachable.
type AskResponse struct {
	Message      string `json:"message"`
	SessionToken string `json:"session_token"`
	Degraded     bool   `json:"error,omitempty"`
}

// RecordMessageRequest is the JSON payload for POST /chat/messages.
type RecordMessageRequest struct {
	Body         string  `json:"body"                    example:"Where is room B?"`
	Role         string  `json:"role"                    binding:"required,chat_role" example:"user"`
	SessionToken *string `json:"session_token,omitempty" example:"s-42"`
}

// HistoryResponse lists turns oldest first.
type HistoryResponse struct {
	Messages     []domain.ChatMessage `json:"messages"`
	TotalCount   int                  `json:"total_count"`
	CallerID     string               `json:"caller_id"`
	SessionToken string               `json:"session_token,omitempty"`
}

//
// Handlers
//

// Ask godoc
// @ID          askChat
// @Summary     Ask the assistant
// @Description Records the question, forwards it to the inference server with the default system prompt and records the reply. When the server is unreachable a fallback reply is returned with error=true.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.AskRequest  true  "Question"
// @Success     200   {object}  handlers.AskResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503   {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /chat [post]
func (h *Handlers) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	res, err := h.chat.Ask(c.Request.Context(), services.AskInput{
		CallerID:     caller(c),
		Message:      req.Message,
		SessionToken: req.SessionToken,
		ClientAgent:  clientAgent(c),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, AskResponse{
		Message:      res.Reply,
		SessionToken: res.SessionToken,
		Degraded:     res.Degraded,
	})
}

// PostMessage godoc
// @ID          recordMessage
// @Summary     Record a chat turn
// @Description Stores one user or bot turn. With an Idempotency-Key the first stored message is replayed for retries of the same key (200 + Idempotency-Replayed: true).
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Client retry key"  example(7d1f5c1e-3a1b-4c7e-9f01-2a3b4c5d6e7f)
// @Param       body             body    handlers.RecordMessageRequest  true  "Turn"
// @Success     201  {object}  domain.ChatMessage
// @Success     200  {object}  domain.ChatMessage  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /chat/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()

	if id, replay := middleware.ReplayMessageID(c); replay {
		msg, err := h.msgs.Get(ctx, id)
		if err == nil {
			c.Header(HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusOK, msg)
			return
		}
		middleware.LoggerFrom(c).Warn().Err(err).Uint("message_id", id).Msg("idempotent replay failed; recording again")
	}

	var req RecordMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid body: role must be user or bot")
		return
	}

	who := caller(c)
	msg, err := h.msgs.Record(ctx, services.RecordInput{
		CallerID:     who,
		Body:         req.Body,
		Role:         domain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		SessionToken: req.SessionToken,
		ClientAgent:  clientAgent(c),
	})
	if err != nil {
		failErr(c, err)
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has {
		if err := h.idem.Remember(ctx, who, middleware.IdempotencyScope(c), key, msg.ID); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency key not stored")
		}
	}
	ok(c, http.StatusCreated, msg)
}

// History godoc
// @ID          chatHistory
// @Summary     Chat history
// @Description Returns the caller's most recent turns, or a session's turns when session_id is given, oldest first.
// @Tags        Chat
// @Produce     json
// @Param       session_id  query  string  false  "Session token"
// @Param       limit       query  int     false  "Max turns"  minimum(1) maximum(500) default(50)
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /chat/history [get]
func (h *Handlers) History(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultHistoryLimit)
	token := strings.TrimSpace(c.Query("session_id"))

	var (
		msgs []domain.ChatMessage
		err  error
	)
	if token != "" {
		msgs, err = h.msgs.SessionHistory(ctx, token, limit)
	} else {
		msgs, err = h.msgs.History(ctx, who, limit)
		msgs = utils.Reverse(msgs)
	}
	if err != nil {
		failErr(c, err)
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	ok(c, http.StatusOK, HistoryResponse{
		Messages:     msgs,
		TotalCount:   len(msgs),
		CallerID:     who,
		SessionToken: token,
	})
}

// Session godoc
// @ID          chatSession
// @Summary     Session aggregate
// @Tags        Chat
// @Produce     json
// @Param       token  path  string  true  "Session token"
// @Success     200  {object}  domain.ChatSession
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /chat/sessions/{token} [get]
func (h *Handlers) Session(c *gin.Context) {
	s, err := h.msgs.Session(c.Request.Context(), c.Param("token"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

// Analytics godoc
// @ID          chatAnalytics
// @Summary     Chat usage analytics
// @Description Unique callers and sessions, totals, average body length, last-hour volume and the top callers.
// @Tags        Chat
// @Produce     json
// @Success     200  {object}  repo.ChatAnalytics
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /chat/analytics [get]
func (h *Handlers) Analytics(c *gin.Context) {
	a, err := h.msgs.Analytics(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, a)
}
