package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// DraftStorage persists capture drafts locally so partial progress
// survives failure and restarts.
type DraftStorage interface {
	SaveDraft(ctx context.Context, draft *models.CaptureDraft) error
	GetDraft(ctx context.Context, id string) (*models.CaptureDraft, error)
	ListDrafts(ctx context.Context) ([]*models.CaptureDraft, error)
	DeleteDraft(ctx context.Context, id string) error
}

// JobStorage persists queued extraction jobs tracked out-of-band.
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.AsyncExtractionJob) error
	GetJob(ctx context.Context, id string) (*models.AsyncExtractionJob, error)
	ListJobs(ctx context.Context) ([]*models.AsyncExtractionJob, error)
	DeleteJob(ctx context.Context, id string) error
}

// StorageManager owns the database connection and hands out typed stores.
type StorageManager interface {
	DraftStorage() DraftStorage
	JobStorage() JobStorage
	Close() error
}
