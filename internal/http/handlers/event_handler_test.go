package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/hackathon-backend/internal/domain"
)

func TestEvents_CreateListDeactivate(t *testing.T) {
	e := newEnv(t, &fakeLLM{}, true)
	start := t0.Add(time.Hour)

	w := e.do(t, http.MethodPost, "/api/v1/events", "", CreateEventRequest{
		Title: "Final pitch", Description: "Room A", EventType: "Deadline", Priority: "HIGH", StartTime: &start,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	ev := decode[domain.Event](t, w)
	if ev.Priority != domain.PriorityHigh || ev.Kind != domain.KindDeadline || !ev.Active || ev.CreatedBy != "admin" {
		t.Fatalf("event=%+v", ev)
	}

	// defaults: info / medium
	w = e.do(t, http.MethodPost, "/api/v1/events", "", CreateEventRequest{Title: "Wifi", Description: "pw on the wall", CreatedBy: "ops"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create default status=%d", w.Code)
	}
	if d := decode[domain.Event](t, w); d.Kind != domain.KindInfo || d.Priority != domain.PriorityMedium || d.CreatedBy != "ops" {
		t.Fatalf("defaults=%+v", d)
	}

	w = e.do(t, http.MethodGet, "/api/v1/events", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d", w.Code)
	}
	list := decode[EventsResponse](t, w)
	if list.Type != EventViewActive || len(list.Events) != 2 {
		t.Fatalf("list=%+v", list)
	}
	top := list.Events[0]
	if top.Title != "Final pitch" || top.TimeAgo != "5m ago" || !top.IsUpcoming || top.IsOngoing {
		t.Fatalf("top=%+v", top)
	}

	recent := decode[EventsResponse](t, e.do(t, http.MethodGet, "/api/v1/events?type=recent&hours=24&limit=1", "", nil))
	if recent.Type != EventViewRecent || len(recent.Events) != 1 {
		t.Fatalf("recent=%+v", recent)
	}

	w = e.do(t, http.MethodPost, "/api/v1/events/1/deactivate", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("deactivate status=%d", w.Code)
	}
	w = e.do(t, http.MethodPost, "/api/v1/events/1/deactivate", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("repeat deactivate status=%d", w.Code)
	}
	list = decode[EventsResponse](t, e.do(t, http.MethodGet, "/api/v1/events?type=active", "", nil))
	if len(list.Events) != 1 || list.Events[0].Title != "Wifi" {
		t.Fatalf("after deactivate=%+v", list)
	}

	w = e.do(t, http.MethodGet, "/api/v1/events/1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}
	if got := decode[EventView](t, w); got.Active || got.Title != "Final pitch" || got.TimeAgo != "5m ago" {
		t.Fatalf("get=%+v", got)
	}
}

func TestEvents_Errors(t *testing.T) {
	e := newEnv(t, &fakeLLM{}, true)

	expectError(t, e.do(t, http.MethodPost, "/api/v1/events", "", CreateEventRequest{Title: "t", Description: "d", Priority: "critical"}),
		http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(t, http.MethodPost, "/api/v1/events", "", CreateEventRequest{Title: "t", Description: "d", EventType: "party"}),
		http.StatusBadRequest, ErrCodeBadRequest)
	er := expectError(t, e.do(t, http.MethodPost, "/api/v1/events", "", CreateEventRequest{Title: "  ", Description: "d"}),
		http.StatusBadRequest, ErrCodeBadRequest)
	if er.Message != "event title is required" {
		t.Fatalf("message=%q", er.Message)
	}

	start, end := t0, t0.Add(-time.Hour)
	expectError(t, e.do(t, http.MethodPost, "/api/v1/events", "", CreateEventRequest{Title: "t", Description: "d", StartTime: &start, EndTime: &end}),
		http.StatusBadRequest, ErrCodeBadRequest)

	expectError(t, e.do(t, http.MethodGet, "/api/v1/events?type=upcoming", "", nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(t, http.MethodGet, "/api/v1/events?type=recent&hours=0", "", nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(t, http.MethodPost, "/api/v1/events/x/deactivate", "", nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(t, http.MethodPost, "/api/v1/events/4242/deactivate", "", nil), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, e.do(t, http.MethodGet, "/api/v1/events/4242", "", nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestViewEvent_Flags(t *testing.T) {
	now := t0
	past, future := t0.Add(-time.Hour), t0.Add(time.Hour)

	cases := []struct {
		name              string
		start, end        *time.Time
		upcoming, ongoing bool
	}{
		{"no window", nil, nil, false, false},
		{"starts later", &future, nil, true, false},
		{"running", &past, &future, false, true},
		{"started, open end", &past, nil, false, false},
		{"over", &past, &past, false, false},
	}
	for _, tc := range cases {
		v := viewEvent(domain.Event{CreatedAt: now.Add(-2 * time.Hour), StartAt: tc.start, EndAt: tc.end}, now)
		if v.IsUpcoming != tc.upcoming || v.IsOngoing != tc.ongoing {
			t.Fatalf("%s: upcoming=%v ongoing=%v", tc.name, v.IsUpcoming, v.IsOngoing)
		}
		if v.TimeAgo != "2h ago" {
			t.Fatalf("%s: time_ago=%q", tc.name, v.TimeAgo)
		}
	}
}
