package caltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"time"

	"google.golang.org/api/calendar/v3"
)

// Server is a fake Google Calendar API server.
type Server struct {
	*httptest.Server
	mu        sync.RWMutex
	calendars map[string][]*calendar.Event // calendarID -> events in insertion order
	nextID    int
	pageSize  int
}

// NewServer starts an empty fake calendar server.
func NewServer() *Server {
	s := &Server{}
	s.reset()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /calendars/{calendarID}/events", s.insertEvent)
	mux.HandleFunc("GET /calendars/{calendarID}/events", s.listEvents)
	mux.HandleFunc("GET /calendars/{calendarID}/events/{eventID}", s.getEvent)
	mux.HandleFunc("DELETE /calendars/{calendarID}/events/{eventID}", s.deleteEvent)

	s.Server = httptest.NewServer(mux)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers in the Google API error envelope so clients surface
// a *googleapi.Error with the right code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
		},
	})
}

func (s *Server) insertEvent(w http.ResponseWriter, r *http.Request) {
	var event calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	calendarID := r.PathValue("calendarID")
	s.store(calendarID, &event)

	event.Status = "confirmed"
	event.Created = time.Now().UTC().Format(time.RFC3339)
	event.Updated = event.Created
	event.HtmlLink = "https://calendar.google.com/event?eid=" + event.Id

	writeJSON(w, http.StatusOK, &event)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	timeMin, err := parseBound(query.Get("timeMin"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timeMin")
		return
	}
	timeMax, err := parseBound(query.Get("timeMax"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timeMax")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	calendarID := r.PathValue("calendarID")

	// timeMin bounds the end of an event and timeMax its start, as the real API does.
	var events []*calendar.Event
	for _, event := range s.calendars[calendarID] {
		start, end := bounds(event)
		if !timeMin.IsZero() && !end.IsZero() && !end.After(timeMin) {
			continue
		}
		if !timeMax.IsZero() && !start.IsZero() && !start.Before(timeMax) {
			continue
		}
		events = append(events, event)
	}

	if query.Get("orderBy") == "startTime" {
		slices.SortStableFunc(events, func(a, b *calendar.Event) int {
			as, _ := bounds(a)
			bs, _ := bounds(b)
			return as.Compare(bs)
		})
	}

	startIdx, _ := strconv.Atoi(query.Get("pageToken"))
	startIdx = min(max(startIdx, 0), len(events))
	pageSize := s.pageSize
	if n, err := strconv.Atoi(query.Get("maxResults")); err == nil && n > 0 {
		pageSize = n
	}
	endIdx := len(events)
	if pageSize > 0 {
		endIdx = min(startIdx+pageSize, len(events))
	}

	resp := &calendar.Events{
		Kind:    "calendar#events",
		Summary: calendarID,
		Items:   events[startIdx:endIdx],
	}
	if endIdx < len(events) {
		resp.NextPageToken = strconv.Itoa(endIdx)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.find(r.PathValue("calendarID"), r.PathValue("eventID"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, s.calendars[r.PathValue("calendarID")][i])
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	calendarID := r.PathValue("calendarID")
	i := s.find(calendarID, r.PathValue("eventID"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	s.calendars[calendarID] = slices.Delete(s.calendars[calendarID], i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) find(calendarID, eventID string) int {
	return slices.IndexFunc(s.calendars[calendarID], func(e *calendar.Event) bool {
		return e.Id == eventID
	})
}

// store assigns an ID when missing and appends the event. Callers hold s.mu.
func (s *Server) store(calendarID string, event *calendar.Event) {
	if event.Id == "" {
		event.Id = fmt.Sprintf("event%d", s.nextID)
		s.nextID++
	}
	s.calendars[calendarID] = append(s.calendars[calendarID], event)
}

func parseBound(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

// bounds reads event times. All-day dates are midnight UTC.
func bounds(event *calendar.Event) (start, end time.Time) {
	return parseEventTime(event.Start), parseEventTime(event.End)
}

func parseEventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		v, _ := time.Parse(time.RFC3339, t.DateTime)
		return v
	}
	v, _ := time.Parse(time.DateOnly, t.Date)
	return v
}

// AddEvent seeds an event (for test setup).
func (s *Server) AddEvent(calendarID string, event *calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(calendarID, event)
}

// Events returns the events of a calendar in insertion order (for test assertions).
func (s *Server) Events(calendarID string) []*calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.calendars[calendarID])
}

// SetPageSize caps how many events a list response holds when the request
// sends no maxResults. Zero returns everything in one page.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// Reset removes every event and clears the page size.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Server) reset() {
	s.calendars = make(map[string][]*calendar.Event)
	s.nextID = 1
	s.pageSize = 0
}
