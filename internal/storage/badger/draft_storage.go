package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DraftStorage implements the DraftStorage interface for Badger.
// Drafts are snapshotted on every mutation so partial capture progress
// survives a crash or restart.
type DraftStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDraftStorage creates a new DraftStorage instance
func NewDraftStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DraftStorage {
	return &DraftStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DraftStorage) SaveDraft(ctx context.Context, draft *models.CaptureDraft) error {
	if draft.ID == "" {
		return fmt.Errorf("draft ID is required")
	}

	now := time.Now()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	if err := s.db.Store().Upsert(draft.ID, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *DraftStorage) GetDraft(ctx context.Context, id string) (*models.CaptureDraft, error) {
	var draft models.CaptureDraft
	if err := s.db.Store().Get(id, &draft); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("draft not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &draft, nil
}

func (s *DraftStorage) ListDrafts(ctx context.Context) ([]*models.CaptureDraft, error) {
	var drafts []models.CaptureDraft
	if err := s.db.Store().Find(&drafts, nil); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})

	result := make([]*models.CaptureDraft, len(drafts))
	for i := range drafts {
		result[i] = &drafts[i]
	}
	return result, nil
}

func (s *DraftStorage) DeleteDraft(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.CaptureDraft{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
