package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// SubmissionCoordinator assembles and persists the final content record:
// resolve tags, resolve/upload the thumbnail exactly once, POST the record.
// At most one submission per session is in flight; re-entrant calls get
// models.ErrSubmitInFlight. No step is partially retried: a failed submit
// is re-run from scratch by the user.
type SubmissionCoordinator interface {
	Submit(ctx context.Context, draft *models.CaptureDraft) (*models.SubmitResult, error)
}

// UploadService covers the binary endpoints the coordinator needs.
type UploadService interface {
	// UploadBlob uploads image/file bytes (multipart) and returns the
	// assigned storage URL.
	UploadBlob(ctx context.Context, data []byte, filename, kind string) (string, error)

	// StoreRemoteImage asks the backend to fetch-and-store a remote image
	// URL and returns the assigned storage URL.
	StoreRemoteImage(ctx context.Context, imageURL string) (string, error)

	// CreateRecord persists the final content record and returns its ID.
	CreateRecord(ctx context.Context, record *models.ContentRecord) (string, error)
}
