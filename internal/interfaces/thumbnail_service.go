package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// DeriveInput carries the raw material for one thumbnail derivation.
// Exactly one of Data or URL is set, matching the draft's source.
type DeriveInput struct {
	Kind models.ContentKind
	Data []byte // Uploaded file bytes
	URL  string // Remote source reference

	// Generation is the derivation generation active when the request was
	// made. The result carries it back so stale results can be discarded.
	Generation uint64
}

// ThumbnailDeriver produces a candidate preview image entirely on the
// client. Derivation never returns an error to the caller: failure is a
// ThumbnailState with phase Failed.
type ThumbnailDeriver interface {
	Derive(ctx context.Context, input DeriveInput) models.ThumbnailState
}

// ThumbnailStrategy derives a preview for a single content kind. The
// deriver dispatches on kind so adding new kinds stays additive.
type ThumbnailStrategy interface {
	Derive(ctx context.Context, input DeriveInput) (models.ThumbnailState, error)
}
