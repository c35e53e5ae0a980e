package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/http/middleware"
	"github.com/tbourn/hackathon-backend/internal/services"
	"github.com/tbourn/hackathon-backend/internal/utils"
)

// Event list views accepted by GET /events?type=.
const (
	EventViewActive = "active"
	EventViewRecent = "recent"
)

// CreateEventRequest is the JSON payload for POST /events. Type and priority
// default to info and medium.
type CreateEventRequest struct {
	Title       string     `json:"title"                example:"Lunch is served"`
	Description string     `json:"description"          example:"Pizza in the main hall"`
	EventType   string     `json:"event_type,omitempty" binding:"omitempty,event_kind" example:"announcement"`
	Priority    string     `json:"priority,omitempty"   binding:"omitempty,event_priority" example:"high"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty" example:"organizers"`
}

// EventView decorates an event with times relative to the request.
type EventView struct {
	domain.Event
	TimeAgo    string `json:"time_ago"    example:"5m ago"`
	IsUpcoming bool   `json:"is_upcoming"`
	IsOngoing  bool   `json:"is_ongoing"`
}

// EventsResponse is the body of GET /events.
type EventsResponse struct {
	Events      []EventView `json:"events"`
	Type        string      `json:"type"`
	LastUpdated time.Time   `json:"last_updated"`
}

func viewEvent(e domain.Event, now time.Time) EventView {
	v := EventView{Event: e, TimeAgo: utils.TimeAgo(e.CreatedAt, now)}
	if e.StartAt != nil {
		v.IsUpcoming = e.StartAt.After(now)
		v.IsOngoing = e.EndAt != nil && !e.StartAt.After(now) && !e.EndAt.Before(now)
	}
	return v
}

// ListEvents godoc
// @ID          listEvents
// @Summary     List announcements
// @Description type=active lists active events by priority then age; type=recent lists events created within the last `hours`, newest first.
// @Tags        Events
// @Produce     json
// @Param       type   query  string  false  "View"  Enums(active, recent) default(active)
// @Param       limit  query  int     false  "Max events"  minimum(1) maximum(100) default(10)
// @Param       hours  query  int     false  "Window for type=recent"  minimum(1) default(24)
// @Success     200  {object}  handlers.EventsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /events [get]
func (h *Handlers) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()
	view := strings.ToLower(strings.TrimSpace(c.DefaultQuery("type", EventViewActive)))
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultEventLimit)

	var (
		evs []domain.Event
		err error
	)
	switch view {
	case EventViewActive:
		evs, err = h.events.Active(ctx, limit)
	case EventViewRecent:
		hours := services.DefaultRecentHours
		if raw := c.Query("hours"); raw != "" {
			hours = utils.AtoiDefault(raw, 0)
		}
		evs, err = h.events.Recent(ctx, hours, limit)
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be active or recent")
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}

	now := h.now()
	out := make([]EventView, 0, len(evs))
	for _, e := range evs {
		out = append(out, viewEvent(e, now))
	}
	ok(c, http.StatusOK, EventsResponse{Events: out, Type: view, LastUpdated: now})
}

// CreateEvent godoc
// @ID          createEvent
// @Summary     Publish an announcement
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       X-Admin-Code  header  string  false  "Admin code"
// @Param       body          body    handlers.CreateEventRequest  true  "Event"
// @Success     201  {object}  domain.Event
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid admin code"
// @Router      /events [post]
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid body: check event_type and priority")
		return
	}
	e, err := h.events.Create(c.Request.Context(), services.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Kind:        domain.EventKind(req.EventType),
		Priority:    domain.EventPriority(req.Priority),
		StartAt:     req.StartTime,
		EndAt:       req.EndTime,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().Uint("event_id", e.ID).Str("priority", string(e.Priority)).Msg("event published")
	ok(c, http.StatusCreated, e)
}

// GetEvent godoc
// @ID          getEvent
// @Summary     Get an announcement
// @Description Returns the event whether or not it is still active.
// @Tags        Events
// @Produce     json
// @Param       id  path  int  true  "Event ID"  minimum(1)
// @Success     200  {object}  handlers.EventView
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Event not found"
// @Router      /events/{id} [get]
func (h *Handlers) GetEvent(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "event id must be a positive integer")
		return
	}
	e, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, viewEvent(*e, h.now()))
}

// DeactivateEvent godoc
// @ID          deactivateEvent
// @Summary     Retire an announcement
// @Description Marks the event inactive. Repeating the call is a no-op.
// @Tags        Events
// @Param       X-Admin-Code  header  string  false  "Admin code"
// @Param       id            path    int     true   "Event ID"  minimum(1)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Event not found"
// @Router      /events/{id}/deactivate [post]
func (h *Handlers) DeactivateEvent(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "event id must be a positive integer")
		return
	}
	if err := h.events.Deactivate(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
