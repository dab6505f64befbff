package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/models"
)

// Mock queue API for testing
type mockQueueAPI struct {
	requestID  string
	submitErr  error
	status     models.JobStatus
	result     *models.ExtractionResult
	statusErr  error
	fetchCalls int
}

func (m *mockQueueAPI) QueueExtraction(ctx context.Context, url string) (string, error) {
	if m.submitErr != nil {
		return "", m.submitErr
	}
	return m.requestID, nil
}

func (m *mockQueueAPI) FetchQueuedResult(ctx context.Context, requestID string) (models.JobStatus, *models.ExtractionResult, string, error) {
	m.fetchCalls++
	if m.statusErr != nil {
		return "", nil, "", m.statusErr
	}
	return m.status, m.result, "", nil
}

// In-memory job storage for testing
type memJobStorage struct {
	mu   sync.Mutex
	jobs map[string]models.AsyncExtractionJob
}

func newMemJobStorage() *memJobStorage {
	return &memJobStorage{jobs: make(map[string]models.AsyncExtractionJob)}
}

func (s *memJobStorage) SaveJob(ctx context.Context, job *models.AsyncExtractionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *memJobStorage) GetJob(ctx context.Context, id string) (*models.AsyncExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return &job, nil
}

func (s *memJobStorage) ListJobs(ctx context.Context) ([]*models.AsyncExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]*models.AsyncExtractionJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		j := job
		jobs = append(jobs, &j)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

func (s *memJobStorage) DeleteJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

func TestPoller_IsQueuedDomain(t *testing.T) {
	poller := NewPoller(&mockQueueAPI{}, newMemJobStorage(),
		[]string{"youtube.com", "youtu.be", "vimeo.com"}, arbor.NewLogger())

	tests := []struct {
		url      string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=abc123", true},
		{"https://youtube.com/watch?v=abc123", true},
		{"https://m.youtube.com/watch?v=abc123", true},
		{"https://youtu.be/abc123", true},
		{"https://vimeo.com/12345", true},
		{"https://example.com/article", false},
		{"https://notyoutube.com/watch", false},
		{"https://youtube.com.evil.example/watch", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, poller.IsQueuedDomain(tt.url))
		})
	}
}

func TestPoller_Submit(t *testing.T) {
	api := &mockQueueAPI{requestID: "req_abc"}
	storage := newMemJobStorage()
	poller := NewPoller(api, storage, []string{"youtube.com"}, arbor.NewLogger())

	job, err := poller.Submit(context.Background(), "https://youtube.com/watch?v=x")
	require.NoError(t, err)
	assert.Equal(t, "req_abc", job.RequestID)
	assert.Equal(t, models.JobQueued, job.Status)

	stored, err := storage.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://youtube.com/watch?v=x", stored.SourceURL)
}

func TestPoller_Submit_BackendFailure(t *testing.T) {
	api := &mockQueueAPI{submitErr: errors.New("queue full")}
	storage := newMemJobStorage()
	poller := NewPoller(api, storage, nil, arbor.NewLogger())

	_, err := poller.Submit(context.Background(), "https://youtube.com/watch?v=x")
	assert.Error(t, err)

	jobs, err := storage.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs, "failed submission leaves no local job")
}

func TestPoller_FetchStatus_Progression(t *testing.T) {
	api := &mockQueueAPI{requestID: "req_abc", status: models.JobProcessing}
	storage := newMemJobStorage()
	poller := NewPoller(api, storage, nil, arbor.NewLogger())

	job, err := poller.Submit(context.Background(), "https://youtube.com/watch?v=x")
	require.NoError(t, err)

	refreshed, err := poller.FetchStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobProcessing, refreshed.Status)

	api.status = models.JobCompleted
	api.result = &models.ExtractionResult{Title: "Video", ContentKind: models.KindVideo}

	refreshed, err = poller.FetchStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, refreshed.Status)
	require.NotNil(t, refreshed.Result)
	assert.Equal(t, "Video", refreshed.Result.Title)
}

func TestPoller_FetchStatus_TerminalIsSticky(t *testing.T) {
	api := &mockQueueAPI{requestID: "req_abc", status: models.JobCompleted,
		result: &models.ExtractionResult{Title: "Video"}}
	storage := newMemJobStorage()
	poller := NewPoller(api, storage, nil, arbor.NewLogger())

	job, err := poller.Submit(context.Background(), "https://youtube.com/watch?v=x")
	require.NoError(t, err)

	_, err = poller.FetchStatus(context.Background(), job.ID)
	require.NoError(t, err)
	fetchesAfterCompletion := api.fetchCalls

	// A completed job is served from local storage
	refreshed, err := poller.FetchStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, refreshed.Status)
	assert.Equal(t, fetchesAfterCompletion, api.fetchCalls, "terminal job must not hit the backend again")
}

func TestPoller_FetchStatus_ReadFailureLeavesJobUntouched(t *testing.T) {
	api := &mockQueueAPI{requestID: "req_abc", statusErr: errors.New("backend down")}
	storage := newMemJobStorage()
	poller := NewPoller(api, storage, nil, arbor.NewLogger())

	job, err := poller.Submit(context.Background(), "https://youtube.com/watch?v=x")
	require.NoError(t, err)

	_, err = poller.FetchStatus(context.Background(), job.ID)
	assert.Error(t, err)

	stored, err := storage.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobQueued, stored.Status)
}
