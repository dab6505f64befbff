package jobs

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// QueueAPI defines the backend queue endpoints the poller needs.
type QueueAPI interface {
	QueueExtraction(ctx context.Context, url string) (string, error)
	FetchQueuedResult(ctx context.Context, requestID string) (models.JobStatus, *models.ExtractionResult, string, error)
}

// Poller tracks queued extraction jobs. Submitting is terminal for the
// session that triggered it; status is fetched on explicit user refresh,
// never on a timer.
type Poller struct {
	api           QueueAPI
	storage       interfaces.JobStorage
	queuedDomains []string
	logger        arbor.ILogger
}

// Compile-time assertion
var _ interfaces.JobPoller = (*Poller)(nil)

// NewPoller creates a new job poller
func NewPoller(api QueueAPI, storage interfaces.JobStorage, queuedDomains []string, logger arbor.ILogger) *Poller {
	return &Poller{
		api:           api,
		storage:       storage,
		queuedDomains: queuedDomains,
		logger:        logger,
	}
}

// IsQueuedDomain reports whether the URL's host belongs to a domain whose
// extraction is queued rather than synchronous.
func (p *Poller) IsQueuedDomain(rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(strings.TrimPrefix(parsed.Host, "www."))
	for _, domain := range p.queuedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Submit enqueues a queued-extraction job and persists it locally.
func (p *Poller) Submit(ctx context.Context, sourceURL string) (*models.AsyncExtractionJob, error) {
	requestID, err := p.api.QueueExtraction(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to queue extraction: %w", err)
	}

	job := &models.AsyncExtractionJob{
		ID:        common.NewJobID(),
		RequestID: requestID,
		SourceURL: sourceURL,
		Status:    models.JobQueued,
	}
	if err := p.storage.SaveJob(ctx, job); err != nil {
		// The backend job exists either way; losing local tracking is worse
		// than surfacing the storage failure
		return nil, fmt.Errorf("failed to persist queued job: %w", err)
	}

	p.logger.Info().
		Str("job_id", job.ID).
		Str("request_id", requestID).
		Str("url", sourceURL).
		Msg("Extraction job queued")

	return job, nil
}

// FetchStatus reads the job's backend status once and persists any
// transition. Terminal statuses are sticky: a completed or failed job is
// returned from local storage without another remote call.
func (p *Poller) FetchStatus(ctx context.Context, jobID string) (*models.AsyncExtractionJob, error) {
	job, err := p.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return job, nil
	}

	status, result, errMsg, err := p.api.FetchQueuedResult(ctx, job.RequestID)
	if err != nil {
		// A failed read leaves the job untouched; the user refreshes again
		return nil, fmt.Errorf("failed to fetch job status: %w", err)
	}

	if job.ApplyStatus(status, result, errMsg) {
		if err := p.storage.SaveJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to persist job status: %w", err)
		}
		p.logger.Debug().
			Str("job_id", job.ID).
			Str("status", string(job.Status)).
			Msg("Job status updated")
	}

	return job, nil
}

// ListJobs returns all locally tracked jobs, newest first.
func (p *Poller) ListJobs(ctx context.Context) ([]*models.AsyncExtractionJob, error) {
	return p.storage.ListJobs(ctx)
}
