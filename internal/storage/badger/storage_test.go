package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "colligo-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, manager.Close())
	})
	return manager
}

func TestDraftStorage_RoundTrip(t *testing.T) {
	storage := newTestManager(t).DraftStorage()
	ctx := context.Background()

	draft := models.NewCaptureDraft("draft_1")
	draft.Title = "A Post"
	draft.SetSourceURL("https://example.com/post")
	require.NoError(t, draft.AddTag("go", 0))

	require.NoError(t, storage.SaveDraft(ctx, draft))

	got, err := storage.GetDraft(ctx, "draft_1")
	require.NoError(t, err)
	assert.Equal(t, "A Post", got.Title)
	assert.Equal(t, "https://example.com/post", got.Source.URL)
	assert.Equal(t, []string{"go"}, got.TagNames)

	// Re-save overwrites
	draft.Title = "Renamed"
	require.NoError(t, storage.SaveDraft(ctx, draft))
	got, err = storage.GetDraft(ctx, "draft_1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestDraftStorage_MissingDraft(t *testing.T) {
	storage := newTestManager(t).DraftStorage()

	_, err := storage.GetDraft(context.Background(), "draft_missing")
	assert.Error(t, err)
}

func TestDraftStorage_SaveRequiresID(t *testing.T) {
	storage := newTestManager(t).DraftStorage()

	err := storage.SaveDraft(context.Background(), &models.CaptureDraft{})
	assert.Error(t, err)
}

func TestDraftStorage_Delete(t *testing.T) {
	storage := newTestManager(t).DraftStorage()
	ctx := context.Background()

	draft := models.NewCaptureDraft("draft_1")
	require.NoError(t, storage.SaveDraft(ctx, draft))
	require.NoError(t, storage.DeleteDraft(ctx, "draft_1"))

	_, err := storage.GetDraft(ctx, "draft_1")
	assert.Error(t, err)

	// Deleting a missing draft is not an error
	assert.NoError(t, storage.DeleteDraft(ctx, "draft_1"))
}

func TestDraftStorage_ListNewestFirst(t *testing.T) {
	storage := newTestManager(t).DraftStorage()
	ctx := context.Background()

	// SaveDraft stamps UpdatedAt, so save order determines recency
	for _, id := range []string{"draft_a", "draft_b", "draft_c"} {
		require.NoError(t, storage.SaveDraft(ctx, models.NewCaptureDraft(id)))
	}

	drafts, err := storage.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	for i := 1; i < len(drafts); i++ {
		assert.False(t, drafts[i].UpdatedAt.After(drafts[i-1].UpdatedAt))
	}
}

func TestJobStorage_RoundTrip(t *testing.T) {
	storage := newTestManager(t).JobStorage()
	ctx := context.Background()

	job := &models.AsyncExtractionJob{
		ID:        "job_1",
		RequestID: "req_9",
		SourceURL: "https://www.youtube.com/watch?v=abc",
		Status:    models.JobQueued,
	}
	require.NoError(t, storage.SaveJob(ctx, job))

	got, err := storage.GetJob(ctx, "job_1")
	require.NoError(t, err)
	assert.Equal(t, "req_9", got.RequestID)
	assert.Equal(t, models.JobQueued, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestJobStorage_TerminalStatusIsSticky(t *testing.T) {
	storage := newTestManager(t).JobStorage()
	ctx := context.Background()

	job := &models.AsyncExtractionJob{
		ID:        "job_1",
		SourceURL: "https://www.youtube.com/watch?v=abc",
		Status:    models.JobCompleted,
		Result:    &models.ExtractionResult{Title: "Conference Talk"},
	}
	require.NoError(t, storage.SaveJob(ctx, job))

	regressed := &models.AsyncExtractionJob{
		ID:        "job_1",
		SourceURL: "https://www.youtube.com/watch?v=abc",
		Status:    models.JobProcessing,
	}
	err := storage.SaveJob(ctx, regressed)
	require.Error(t, err)

	got, err := storage.GetJob(ctx, "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "Conference Talk", got.Result.Title)
}

func TestJobStorage_ListNewestFirst(t *testing.T) {
	storage := newTestManager(t).JobStorage()
	ctx := context.Background()

	for _, id := range []string{"job_a", "job_b"} {
		require.NoError(t, storage.SaveJob(ctx, &models.AsyncExtractionJob{
			ID:        id,
			SourceURL: "https://www.youtube.com/watch?v=" + id,
			Status:    models.JobQueued,
		}))
	}

	jobs, err := storage.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for i := 1; i < len(jobs); i++ {
		assert.False(t, jobs[i].CreatedAt.After(jobs[i-1].CreatedAt))
	}
}
