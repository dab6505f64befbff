package submit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/models"
)

// Mock upload service for testing
type mockUploader struct {
	mu               sync.Mutex
	uploadCalls      int
	storeCalls       int
	createCalls      int
	uploadErr        error
	createErr        error
	lastRecord       *models.ContentRecord
	blockCreate      chan struct{} // When set, CreateRecord blocks until closed
	storedURL        string
	uploadedURL      string
	createdID        string
}

func (m *mockUploader) UploadBlob(ctx context.Context, data []byte, filename, kind string) (string, error) {
	m.mu.Lock()
	m.uploadCalls++
	m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return m.uploadedURL, nil
}

func (m *mockUploader) StoreRemoteImage(ctx context.Context, imageURL string) (string, error) {
	m.mu.Lock()
	m.storeCalls++
	m.mu.Unlock()
	return m.storedURL, nil
}

func (m *mockUploader) CreateRecord(ctx context.Context, record *models.ContentRecord) (string, error) {
	m.mu.Lock()
	m.createCalls++
	m.lastRecord = record
	block := m.blockCreate
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	if m.createErr != nil {
		return "", m.createErr
	}
	return m.createdID, nil
}

// Mock tag resolver for testing
type mockResolver struct {
	ids     []string
	skipped []string
	err     error
	calls   int
}

func (m *mockResolver) Resolve(ctx context.Context, names []string) ([]string, []string, error) {
	m.calls++
	return m.ids, m.skipped, m.err
}

func testDraft() *models.CaptureDraft {
	draft := models.NewCaptureDraft("draft_test")
	draft.Title = "A Post"
	draft.ContentKind = models.KindArticle
	draft.SetSourceURL("https://example.com/post")
	return draft
}

func TestCoordinator_Submit(t *testing.T) {
	uploader := &mockUploader{createdID: "rec_1"}
	resolver := &mockResolver{ids: []string{"tag_1", "tag_2"}}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := testDraft()
	draft.Description = "About things"
	draft.PersonalNotes = "my notes"

	result, err := coordinator.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "rec_1", result.RecordID)
	assert.Empty(t, result.SkippedTags)

	record := uploader.lastRecord
	require.NotNil(t, record)
	assert.Equal(t, "https://example.com/post", record.Link)
	assert.Equal(t, "A Post", record.Title)
	assert.Equal(t, "article", record.ContentType)
	assert.Equal(t, []string{"tag_1", "tag_2"}, record.TagIDs)
	assert.Nil(t, record.ThumbnailURL, "no thumbnail submits a nil pointer, not an empty string")
}

func TestCoordinator_Submit_ValidationFailsBeforeNetwork(t *testing.T) {
	uploader := &mockUploader{createdID: "rec_1"}
	resolver := &mockResolver{}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := models.NewCaptureDraft("draft_test")
	// No title, no source

	_, err := coordinator.Submit(context.Background(), draft)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, resolver.calls)
	assert.Zero(t, uploader.createCalls)
}

func TestCoordinator_Submit_LocalBlobUploadedOnce(t *testing.T) {
	uploader := &mockUploader{createdID: "rec_1", uploadedURL: "https://store.example.com/thumb.jpg"}
	resolver := &mockResolver{}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := testDraft()
	draft.Thumbnail = models.LocalBlobThumbnail(1, []byte{0xFF, 0xD8}, "")

	result, err := coordinator.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, 1, uploader.uploadCalls)
	assert.Zero(t, uploader.storeCalls)
	require.NotNil(t, result.Record.ThumbnailURL)
	assert.Equal(t, "https://store.example.com/thumb.jpg", *result.Record.ThumbnailURL)
}

func TestCoordinator_Submit_RemoteURLStored(t *testing.T) {
	uploader := &mockUploader{createdID: "rec_1", storedURL: "https://store.example.com/og.png"}
	resolver := &mockResolver{}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := testDraft()
	draft.Thumbnail = models.RemoteURLThumbnail(1, "https://cdn.example.com/og.png")

	result, err := coordinator.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, 1, uploader.storeCalls)
	assert.Zero(t, uploader.uploadCalls)
	require.NotNil(t, result.Record.ThumbnailURL)
	assert.Equal(t, "https://store.example.com/og.png", *result.Record.ThumbnailURL)
}

func TestCoordinator_Submit_FailedThumbnailSubmitsWithout(t *testing.T) {
	uploader := &mockUploader{createdID: "rec_1"}
	resolver := &mockResolver{}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := testDraft()
	draft.Thumbnail = models.FailedThumbnail(2)

	result, err := coordinator.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Zero(t, uploader.uploadCalls)
	assert.Zero(t, uploader.storeCalls)
	assert.Nil(t, result.Record.ThumbnailURL)
}

func TestCoordinator_Submit_ThumbnailUploadFailureAborts(t *testing.T) {
	uploader := &mockUploader{uploadErr: &models.UploadError{Operation: "upload_blob", Err: errors.New("disk full")}}
	resolver := &mockResolver{}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := testDraft()
	draft.Thumbnail = models.LocalBlobThumbnail(1, []byte{0xFF}, "")

	_, err := coordinator.Submit(context.Background(), draft)
	var uploadErr *models.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Zero(t, uploader.createCalls, "record must not be created after a failed thumbnail upload")
}

func TestCoordinator_Submit_SkippedTagsReported(t *testing.T) {
	uploader := &mockUploader{createdID: "rec_1"}
	resolver := &mockResolver{ids: []string{"tag_1"}, skipped: []string{"badtag"}}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := testDraft()

	result, err := coordinator.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, []string{"badtag"}, result.SkippedTags)
	assert.Equal(t, []string{"tag_1"}, result.Record.TagIDs)
}

func TestCoordinator_Submit_ReentrancyRejected(t *testing.T) {
	block := make(chan struct{})
	uploader := &mockUploader{createdID: "rec_1", blockCreate: block}
	resolver := &mockResolver{}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	draft := testDraft()

	firstDone := make(chan error, 1)
	go func() {
		_, err := coordinator.Submit(context.Background(), draft)
		firstDone <- err
	}()

	// Wait until the first submission is inside CreateRecord
	require.Eventually(t, func() bool {
		uploader.mu.Lock()
		defer uploader.mu.Unlock()
		return uploader.createCalls == 1
	}, 2*time.Second, time.Millisecond)

	_, err := coordinator.Submit(context.Background(), draft)
	assert.ErrorIs(t, err, models.ErrSubmitInFlight)

	close(block)
	require.NoError(t, <-firstDone)

	// The gate clears after completion
	uploader.blockCreate = nil
	_, err = coordinator.Submit(context.Background(), draft)
	assert.NoError(t, err)
}

func TestCoordinator_Submit_GateIsPerDraft(t *testing.T) {
	block := make(chan struct{})
	uploader := &mockUploader{createdID: "rec_1", blockCreate: block}
	resolver := &mockResolver{}
	coordinator := NewCoordinator(uploader, resolver, arbor.NewLogger())

	blocked := testDraft()
	blocked.ID = "draft_a"

	firstDone := make(chan error, 1)
	go func() {
		_, err := coordinator.Submit(context.Background(), blocked)
		firstDone <- err
	}()

	require.Eventually(t, func() bool {
		uploader.mu.Lock()
		defer uploader.mu.Unlock()
		return uploader.createCalls == 1
	}, 2*time.Second, time.Millisecond)

	// While draft_a is pending, draft_b submits through its own gate
	other := testDraft()
	other.ID = "draft_b"

	otherDone := make(chan error, 1)
	go func() {
		_, err := coordinator.Submit(context.Background(), other)
		otherDone <- err
	}()

	require.Eventually(t, func() bool {
		uploader.mu.Lock()
		defer uploader.mu.Unlock()
		return uploader.createCalls == 2
	}, 2*time.Second, time.Millisecond, "a pending submission must not block other drafts")

	// draft_a itself is still gated
	_, err := coordinator.Submit(context.Background(), blocked)
	assert.ErrorIs(t, err, models.ErrSubmitInFlight)

	close(block)
	require.NoError(t, <-firstDone)
	require.NoError(t, <-otherDone)
}
