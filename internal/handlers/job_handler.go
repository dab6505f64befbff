package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/services/capture"
)

// JobHandler exposes queued-extraction jobs. Refreshing a completed job
// returns a capture session pre-populated with its result.
type JobHandler struct {
	poller   interfaces.JobPoller
	sessions *capture.Manager
	logger   arbor.ILogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(poller interfaces.JobPoller, sessions *capture.Manager, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		poller:   poller,
		sessions: sessions,
		logger:   logger,
	}
}

// ListJobsHandler handles GET /api/jobs
func (h *JobHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobs, err := h.poller.ListJobs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list jobs")
		WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	WriteJSON(w, http.StatusOK, jobs)
}

// GetJobHandler handles GET /api/jobs/{id}
func (h *JobHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.poller.FetchStatus(r.Context(), jobID)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// RefreshJobHandler handles POST /api/jobs/{id}/refresh. It fetches the
// backend status once; a completed job's result seeds a capture session
// whose view is returned alongside the job. The session is created on
// the first refresh and reused on repeats.
func (h *JobHandler) RefreshJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.poller.FetchStatus(r.Context(), jobID)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to refresh job")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	response := struct {
		Job     *models.AsyncExtractionJob `json:"job"`
		Session *capture.View              `json:"session,omitempty"`
	}{Job: job}

	if job.Status == models.JobCompleted {
		session, err := h.sessions.SessionFromJob(r.Context(), job)
		if err != nil {
			h.logger.Warn().Err(err).Str("job_id", jobID).Msg("Failed to seed session from job")
		} else {
			view := session.Snapshot()
			response.Session = &view
		}
	}

	WriteJSON(w, http.StatusOK, response)
}

func jobIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 3 || pathParts[2] == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return "", false
	}
	return pathParts[2], true
}
