package fetchtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// FindMeetingTimesPath is the route served by Server.
const FindMeetingTimesPath = "/api/findMeetingTimes"

// Server is a fake meeting-times API for tests.
type Server struct {
	*httptest.Server
	mu       sync.RWMutex
	status   int
	body     any
	requests []*http.Request
}

// NewServer starts a Server that answers with {"slots": []} until programmed.
func NewServer() *Server {
	s := &Server{}
	s.reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+FindMeetingTimesPath, s.handleFindMeetingTimes)
	mux.HandleFunc("/", s.handleUnknown)

	s.Server = httptest.NewServer(mux)
	return s
}

func (s *Server) handleFindMeetingTimes(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.mu.RLock()
	status, body := s.status, s.body
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	http.Error(w, "unsupported endpoint", http.StatusNotFound)
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Clone(r.Context()))
}

// SetSlots programs a successful response listing the given slot labels.
func (s *Server) SetSlots(slots ...string) {
	if slots == nil {
		slots = []string{}
	}
	s.SetResponse(http.StatusOK, map[string]any{"slots": slots})
}

// SetResponse programs an arbitrary status and JSON body.
func (s *Server) SetResponse(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Requests returns the requests received so far (for test assertions).
func (s *Server) Requests() []*http.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests := make([]*http.Request, len(s.requests))
	copy(requests, s.requests)
	return requests
}

// Reset clears recorded requests and programming.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Server) reset() {
	s.status = http.StatusOK
	s.body = map[string]any{"slots": []string{}}
	s.requests = nil
}
