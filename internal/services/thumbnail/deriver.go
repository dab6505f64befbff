package thumbnail

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Deriver dispatches thumbnail derivation to a per-kind strategy.
// Derivation failures are absorbed into a Failed state; a missing
// thumbnail never blocks the capture flow.
type Deriver struct {
	strategies map[models.ContentKind]interfaces.ThumbnailStrategy
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ThumbnailDeriver = (*Deriver)(nil)

// NewDeriver creates a deriver with the default strategy set for the
// given configuration.
func NewDeriver(config *common.Config, logger arbor.ILogger) *Deriver {
	tc := config.Thumbnail
	return &Deriver{
		strategies: map[models.ContentKind]interfaces.ThumbnailStrategy{
			models.KindImage: NewImageStrategy(tc.MaxWidth, tc.JPEGQuality, logger),
			models.KindVideo: NewVideoStrategy(config.Browser, tc, logger),
			models.KindPDF:   NewPDFStrategy(tc.MaxWidth, tc.JPEGQuality, logger),
		},
		logger: logger,
	}
}

// Derive produces a thumbnail state for the input. Kinds without a local
// strategy return the None state; strategy errors return Failed.
func (d *Deriver) Derive(ctx context.Context, input interfaces.DeriveInput) models.ThumbnailState {
	strategy, ok := d.strategies[input.Kind]
	if !ok {
		return models.NoThumbnail()
	}

	state, err := strategy.Derive(ctx, input)
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("kind", string(input.Kind)).
			Int64("generation", int64(input.Generation)).
			Msg("Thumbnail derivation failed")
		return models.FailedThumbnail(input.Generation)
	}
	return state
}
