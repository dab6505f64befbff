package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/services/capture"
)

// CaptureHandler exposes capture sessions over HTTP. Each session is
// addressed by its draft ID; the state machine itself lives in the
// capture package.
type CaptureHandler struct {
	sessions      *capture.Manager
	maxUploadSize int64
	logger        arbor.ILogger
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(sessions *capture.Manager, maxUploadSize int64, logger arbor.ILogger) *CaptureHandler {
	return &CaptureHandler{
		sessions:      sessions,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// CreateSessionHandler handles POST /api/capture
func (h *CaptureHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	session := h.sessions.Create()
	WriteJSON(w, http.StatusCreated, session.Snapshot())
}

// ListSessionsHandler handles GET /api/capture
func (h *CaptureHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.sessions.List())
}

// GetSessionHandler handles GET /api/capture/{id}
func (h *CaptureHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, session.Snapshot())
}

// SetInputHandler handles POST /api/capture/{id}/input
func (h *CaptureHandler) SetInputHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Input string `json:"input"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := session.SetInput(r.Context(), req.Input); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session.Snapshot())
}

// SetFileHandler handles POST /api/capture/{id}/file (multipart)
func (h *CaptureHandler) SetFileHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, "File exceeds the upload limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	if err := session.SetFile(r.Context(), data, header.Filename); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session.Snapshot())
}

// AnalyzeHandler handles POST /api/capture/{id}/analyze
func (h *CaptureHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	if err := session.Analyze(r.Context()); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session.Snapshot())
}

// EditFieldHandler handles POST /api/capture/{id}/edit
func (h *CaptureHandler) EditFieldHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := session.EditField(r.Context(), req.Field, req.Value); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session.Snapshot())
}

// TagHandler handles POST and DELETE /api/capture/{id}/tags
func (h *CaptureHandler) TagHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var err error
	switch r.Method {
	case "POST":
		err = session.AddTag(r.Context(), req.Name)
	case "DELETE":
		err = session.RemoveTag(r.Context(), req.Name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session.Snapshot())
}

// SubmitHandler handles POST /api/capture/{id}/submit
func (h *CaptureHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	result, err := session.Submit(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// CancelHandler handles POST /api/capture/{id}/cancel
func (h *CaptureHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	if err := session.Cancel(r.Context()); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session.Snapshot())
}

// sessionFromPath resolves the session addressed by /api/capture/{id}/...
func (h *CaptureHandler) sessionFromPath(w http.ResponseWriter, r *http.Request) (*capture.Session, bool) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 3 || pathParts[2] == "" {
		WriteError(w, http.StatusBadRequest, "Draft ID is required")
		return nil, false
	}

	session, err := h.sessions.Get(pathParts[2])
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return session, true
}
