package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler returns the HTTP routes of the live feed
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/scan", s.handleGetScan)
	mux.HandleFunc("POST /api/scan", s.handleTriggerScan)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s.logRequests(mux)
}

// logRequests logs each request at debug level
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("HTTP request",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

// errorResponse is the body of non-2xx API replies
type errorResponse struct {
	Error string `json:"error"`
}

// triggerResponse is the body of POST /api/scan
type triggerResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	result, lastErr := s.Latest()
	if result == nil {
		msg := "no scan has completed yet"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTriggerScan(w http.ResponseWriter, r *http.Request) {
	status := "started"
	if !s.Trigger() {
		status = "already running"
	}
	writeJSON(w, http.StatusAccepted, triggerResponse{Status: status})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var initial *Event
	if result, _ := s.Latest(); result != nil {
		initial = &Event{Type: EventScan, Scan: result}
	}
	s.hub.handleWebSocket(w, r, initial)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
