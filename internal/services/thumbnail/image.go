package thumbnail

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// ImageStrategy handles image sources. A remote image URL is already a
// usable thumbnail, so it passes through untouched; uploaded bytes are
// downscaled into a local preview blob.
type ImageStrategy struct {
	maxWidth int
	quality  int
	logger   arbor.ILogger
}

var _ interfaces.ThumbnailStrategy = (*ImageStrategy)(nil)

func NewImageStrategy(maxWidth, quality int, logger arbor.ILogger) *ImageStrategy {
	return &ImageStrategy{
		maxWidth: maxWidth,
		quality:  quality,
		logger:   logger,
	}
}

func (s *ImageStrategy) Derive(ctx context.Context, input interfaces.DeriveInput) (models.ThumbnailState, error) {
	if input.URL != "" {
		return models.RemoteURLThumbnail(input.Generation, input.URL), nil
	}
	if len(input.Data) == 0 {
		return models.ThumbnailState{}, &models.ThumbnailDerivationError{
			Kind:   models.KindImage,
			Reason: "no image data or URL supplied",
		}
	}

	preview, err := encodePreview(input.Data, s.maxWidth, s.quality)
	if err != nil {
		return models.ThumbnailState{}, &models.ThumbnailDerivationError{
			Kind:   models.KindImage,
			Reason: err.Error(),
		}
	}

	s.logger.Debug().
		Int("source_bytes", len(input.Data)).
		Int("preview_bytes", len(preview)).
		Msg("Derived image preview")

	return models.LocalBlobThumbnail(input.Generation, preview, ""), nil
}
