package submit

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Coordinator assembles the final content record and persists it on the
// backend. The sequence is fixed: validate, resolve tags, resolve the
// thumbnail exactly once, create the record. Nothing is partially
// retried; a failed attempt is re-run from scratch by the user.
type Coordinator struct {
	uploader interfaces.UploadService
	tags     interfaces.TagResolver
	validate *validator.Validate
	logger   arbor.ILogger

	// inFlight guards against double submission of the same draft from a
	// stuttered click. Keyed by draft ID: one session's pending submission
	// never blocks another session's.
	inFlight sync.Map
}

// Compile-time interface assertion
var _ interfaces.SubmissionCoordinator = (*Coordinator)(nil)

// NewCoordinator creates a new submission coordinator
func NewCoordinator(uploader interfaces.UploadService, tags interfaces.TagResolver, logger arbor.ILogger) *Coordinator {
	return &Coordinator{
		uploader: uploader,
		tags:     tags,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit builds and persists the record for the draft. Re-entrant calls
// for the same draft while a prior submission is pending fail with
// ErrSubmitInFlight.
func (c *Coordinator) Submit(ctx context.Context, draft *models.CaptureDraft) (*models.SubmitResult, error) {
	if _, pending := c.inFlight.LoadOrStore(draft.ID, struct{}{}); pending {
		return nil, models.ErrSubmitInFlight
	}
	defer c.inFlight.Delete(draft.ID)

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	tagIDs, skipped, err := c.tags.Resolve(ctx, draft.TagNames)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	if len(skipped) > 0 {
		c.logger.Warn().
			Str("draft_id", draft.ID).
			Strs("skipped", skipped).
			Msg("Some tags could not be resolved")
	}

	thumbnailURL, err := c.resolveThumbnail(ctx, draft)
	if err != nil {
		return nil, err
	}

	record := &models.ContentRecord{
		Link:          draft.Source.Ref(),
		Title:         draft.Title,
		ContentType:   string(draft.ContentKind),
		Description:   draft.Description,
		RawContent:    draft.RawContent,
		PersonalNotes: draft.PersonalNotes,
		TagIDs:        tagIDs,
		ThumbnailURL:  thumbnailURL,
	}
	if err := c.validate.Struct(record); err != nil {
		return nil, fmt.Errorf("record validation failed: %w", err)
	}

	recordID, err := c.uploader.CreateRecord(ctx, record)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("draft_id", draft.ID).
		Str("record_id", recordID).
		Msg("Content record created")

	return &models.SubmitResult{
		RecordID:    recordID,
		Record:      *record,
		SkippedTags: skipped,
	}, nil
}

// resolveThumbnail turns whatever thumbnail state the draft carries into
// a stored URL, or nil when there is none. Absence is encoded by a nil
// pointer so the serialized record omits the field entirely.
func (c *Coordinator) resolveThumbnail(ctx context.Context, draft *models.CaptureDraft) (*string, error) {
	thumb := draft.Thumbnail
	switch thumb.Phase {
	case models.ThumbnailLocalBlob:
		url, err := c.uploader.UploadBlob(ctx, thumb.Data, draft.ID+"_thumb.jpg", "thumbnail")
		if err != nil {
			return nil, err
		}
		return &url, nil

	case models.ThumbnailRemoteURL:
		url, err := c.uploader.StoreRemoteImage(ctx, thumb.RemoteURL)
		if err != nil {
			return nil, err
		}
		return &url, nil

	default:
		// None, Pending and Failed all submit without a thumbnail
		return nil, nil
	}
}
