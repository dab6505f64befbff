package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// ExtractionService turns a URL, an uploaded file, or free-form text into
// structured metadata via the backend extraction endpoints. Each call is a
// single attempt with a bounded timeout; retry is the user's decision.
type ExtractionService interface {
	// Extract performs synchronous URL extraction.
	Extract(ctx context.Context, url string) (*models.ExtractionResult, error)

	// ExtractFile uploads file bytes and extracts metadata from them. The
	// returned storage URL becomes the draft's source reference.
	ExtractFile(ctx context.Context, data []byte, filename string) (*models.ExtractionResult, string, error)

	// RefineText enriches free-form ideation text with tags and a summary.
	// The input is treated as already being the content.
	RefineText(ctx context.Context, text string) (*models.ExtractionResult, error)

	// ProbeThumbnail discovers a page's preview image via metadata. An empty
	// URL with a nil error means no thumbnail was found, which is not a failure.
	ProbeThumbnail(ctx context.Context, url string) (string, error)
}
