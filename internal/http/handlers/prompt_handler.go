package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/services"
)

// PromptItem is one entry of PUT /prompts.
type PromptItem struct {
	Title     string `json:"title"                example:"Schedule"`
	Prompt    string `json:"prompt"               example:"What is on the schedule today?"`
	Icon      string `json:"icon"                 example:"calendar"`
	IsActive  *bool  `json:"is_active,omitempty"`
	SortOrder *int   `json:"sort_order,omitempty"`
}

// ReplacePromptsRequest replaces the whole prompt set.
type ReplacePromptsRequest struct {
	Prompts []PromptItem `json:"prompts"`
}

// PromptsResponse lists the active prompts in display order.
type PromptsResponse struct {
	Prompts []domain.Prompt `json:"prompts"`
}

// SystemPromptRequest is the JSON payload for PUT /system-prompts/{name}.
type SystemPromptRequest struct {
	Content string `json:"content" example:"You are a helpful hackathon assistant."`
}

// SystemPromptResponse carries a resolved system prompt.
type SystemPromptResponse struct {
	Name    string `json:"name"    example:"default"`
	Content string `json:"content"`
}

// SystemPromptsResponse lists stored system prompts.
type SystemPromptsResponse struct {
	SystemPrompts []domain.SystemPrompt `json:"system_prompts"`
}

// ListPrompts godoc
// @ID          listPrompts
// @Summary     Quick-start prompts
// @Description Active prompts in display order. The built-in set is stored on first use.
// @Tags        Prompts
// @Produce     json
// @Success     200  {object}  handlers.PromptsResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /prompts [get]
func (h *Handlers) ListPrompts(c *gin.Context) {
	ps, err := h.prompt.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if ps == nil {
		ps = []domain.Prompt{}
	}
	ok(c, http.StatusOK, PromptsResponse{Prompts: ps})
}

// ReplacePrompts godoc
// @ID          replacePrompts
// @Summary     Replace the prompt set
// @Description Atomically swaps every prompt for the given list. Admin only.
// @Tags        Prompts
// @Accept      json
// @Produce     json
// @Param       X-Admin-Code  header  string  false  "Admin code"
// @Param       body          body    handlers.ReplacePromptsRequest  true  "Prompts"
// @Success     200  {object}  handlers.PromptsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid admin code"
// @Router      /prompts [put]
func (h *Handlers) ReplacePrompts(c *gin.Context) {
	var req ReplacePromptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	items := make([]services.PromptInput, 0, len(req.Prompts))
	for _, p := range req.Prompts {
		items = append(items, services.PromptInput{
			Title:     p.Title,
			Body:      p.Prompt,
			IconTag:   p.Icon,
			Active:    p.IsActive,
			SortOrder: p.SortOrder,
		})
	}
	ps, err := h.prompt.Replace(c.Request.Context(), items)
	if err != nil {
		failErr(c, err)
		return
	}
	if ps == nil {
		ps = []domain.Prompt{}
	}
	ok(c, http.StatusOK, PromptsResponse{Prompts: ps})
}

// ListSystemPrompts godoc
// @ID          listSystemPrompts
// @Summary     Stored system prompts
// @Tags        Prompts
// @Produce     json
// @Success     200  {object}  handlers.SystemPromptsResponse
// @Router      /system-prompts [get]
func (h *Handlers) ListSystemPrompts(c *gin.Context) {
	sps, err := h.prompt.ListSystemPrompts(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if sps == nil {
		sps = []domain.SystemPrompt{}
	}
	ok(c, http.StatusOK, SystemPromptsResponse{SystemPrompts: sps})
}

// GetSystemPrompt godoc
// @ID          getSystemPrompt
// @Summary     Resolve a system prompt
// @Description "default" always resolves, falling back to the built-in text.
// @Tags        Prompts
// @Produce     json
// @Param       name  path  string  true  "Prompt name"  example(default)
// @Success     200  {object}  handlers.SystemPromptResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /system-prompts/{name} [get]
func (h *Handlers) GetSystemPrompt(c *gin.Context) {
	name := c.Param("name")
	content, err := h.prompt.SystemPrompt(c.Request.Context(), name)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SystemPromptResponse{Name: name, Content: content})
}

// SaveSystemPrompt godoc
// @ID          saveSystemPrompt
// @Summary     Create or overwrite a system prompt
// @Tags        Prompts
// @Accept      json
// @Produce     json
// @Param       X-Admin-Code  header  string  false  "Admin code"
// @Param       name          path    string  true   "Prompt name"  example(default)
// @Param       body          body    handlers.SystemPromptRequest  true  "Content"
// @Success     200  {object}  domain.SystemPrompt
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid admin code"
// @Router      /system-prompts/{name} [put]
func (h *Handlers) SaveSystemPrompt(c *gin.Context) {
	var req SystemPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	sp, err := h.prompt.SaveSystemPrompt(c.Request.Context(), c.Param("name"), req.Content)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, sp)
}
