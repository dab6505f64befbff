package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// JobPoller handles extraction too slow for synchronous calls (e.g. video
// platforms). Submit enqueues a backend job; FetchStatus is an idempotent
// read triggered by the user, never an automatic timer loop.
type JobPoller interface {
	// Submit enqueues a queued-extraction job and returns its local ID.
	Submit(ctx context.Context, url string) (*models.AsyncExtractionJob, error)

	// FetchStatus reads the job's current backend status. Terminal statuses
	// are sticky: once Completed or Failed the stored job never regresses.
	FetchStatus(ctx context.Context, jobID string) (*models.AsyncExtractionJob, error)

	// ListJobs returns all locally tracked jobs, newest first.
	ListJobs(ctx context.Context) ([]*models.AsyncExtractionJob, error)

	// IsQueuedDomain reports whether the URL belongs to a domain whose
	// extraction must be queued rather than performed synchronously.
	IsQueuedDomain(url string) bool
}
