// Package apitest provides an in-memory shortener backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Server is a fake backend. Analytics bodies are stored raw so tests control
// key order and malformed payloads.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	analytics map[string]string
	aliases   map[string]string
	statuses  map[string]int
	requests  []*http.Request
	createErr *Failure
}

// Failure is a canned error response.
type Failure struct {
	Body   string
	Status int
}

// NewServer starts a fake backend. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		analytics: make(map[string]string),
		aliases:   make(map[string]string),
		statuses:  make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/analytics/{alias}", s.getAnalytics)
	r.Post("/shorten", s.createShortURL)

	s.Server = httptest.NewServer(r)
	return s
}

// SetAnalytics stores a raw JSON body returned with 200 for alias.
func (s *Server) SetAnalytics(alias, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics[alias] = body
	delete(s.statuses, alias)
}

// SetAnalyticsStatus makes reads for alias return status with body.
func (s *Server) SetAnalyticsStatus(alias string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics[alias] = body
	s.statuses[alias] = status
}

// FailCreate makes the next create calls fail with the given response.
func (s *Server) FailCreate(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = &Failure{Status: status, Body: body}
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*http.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Clone(r.Context()))
}

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	alias := chi.URLParam(r, "alias")

	s.mu.Lock()
	body, ok := s.analytics[alias]
	status, hasStatus := s.statuses[alias]
	s.mu.Unlock()

	if !ok {
		sendJSONError(w, "url not found", http.StatusNotFound)
		return
	}
	if !hasStatus {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type createRequest struct {
	URL    string `json:"url"`
	Custom string `json:"custom"`
}

func (s *Server) createShortURL(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.mu.Lock()
	failure := s.createErr
	s.mu.Unlock()
	if failure != nil {
		w.WriteHeader(failure.Status)
		_, _ = w.Write([]byte(failure.Body))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	alias := req.Custom
	if alias == "" {
		alias = fmt.Sprintf("gen%03d", len(s.aliases)+1)
	}
	_, taken := s.aliases[alias]
	if !taken {
		s.aliases[alias] = req.URL
	}
	s.mu.Unlock()

	if taken {
		sendJSONError(w, "alias already exists", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"alias":     alias,
		"short_url": "http://" + r.Host + "/s/" + alias,
	})
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
