package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket event stream
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// Capture session routes
	mux.HandleFunc("/api/capture", s.handleCaptureRoute)   // GET (list), POST (create)
	mux.HandleFunc("/api/capture/", s.handleCaptureRoutes) // Per-session operations

	// Queued extraction jobs
	mux.HandleFunc("/api/jobs", s.app.JobHandler.ListJobsHandler)
	mux.HandleFunc("/api/jobs/", s.handleJobRoutes)

	// System routes
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}

// handleCaptureRoute routes /api/capture (list and create)
func (s *Server) handleCaptureRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.CaptureHandler.ListSessionsHandler(w, r)
	case "POST":
		s.app.CaptureHandler.CreateSessionHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCaptureRoutes routes /api/capture/{id} and its sub-operations
func (s *Server) handleCaptureRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if r.Method == "POST" {
		switch {
		case strings.HasSuffix(path, "/input"):
			s.app.CaptureHandler.SetInputHandler(w, r)
			return
		case strings.HasSuffix(path, "/file"):
			s.app.CaptureHandler.SetFileHandler(w, r)
			return
		case strings.HasSuffix(path, "/analyze"):
			s.app.CaptureHandler.AnalyzeHandler(w, r)
			return
		case strings.HasSuffix(path, "/edit"):
			s.app.CaptureHandler.EditFieldHandler(w, r)
			return
		case strings.HasSuffix(path, "/submit"):
			s.app.CaptureHandler.SubmitHandler(w, r)
			return
		case strings.HasSuffix(path, "/cancel"):
			s.app.CaptureHandler.CancelHandler(w, r)
			return
		case strings.HasSuffix(path, "/tags"):
			s.app.CaptureHandler.TagHandler(w, r)
			return
		}
	}

	if r.Method == "DELETE" && strings.HasSuffix(path, "/tags") {
		s.app.CaptureHandler.TagHandler(w, r)
		return
	}

	// GET /api/capture/{id}
	if r.Method == "GET" {
		s.app.CaptureHandler.GetSessionHandler(w, r)
		return
	}

	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// handleJobRoutes routes /api/jobs/{id} and its sub-operations
func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// POST /api/jobs/{id}/refresh
	if r.Method == "POST" && strings.HasSuffix(path, "/refresh") {
		s.app.JobHandler.RefreshJobHandler(w, r)
		return
	}

	// GET /api/jobs/{id}
	if r.Method == "GET" && len(path) > len("/api/jobs/") {
		s.app.JobHandler.GetJobHandler(w, r)
		return
	}

	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
