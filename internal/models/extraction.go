package models

import "time"

// ExtractionResult is the immutable value returned by remote extraction.
// Merging it into a draft is the draft's concern (ApplyExtraction).
type ExtractionResult struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	ContentKind  ContentKind `json:"content_kind"`
	TagNames     []string    `json:"tag_names"`
	RawContent   string      `json:"raw_content"`
	ThumbnailURL string      `json:"thumbnail_url,omitempty"`
}

// JobStatus is the lifecycle state of a queued extraction job.
// Status is monotonic: a terminal status never regresses.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// AsyncExtractionJob tracks an extraction too slow for synchronous handling.
// The job is persisted locally so it survives restarts; its result seeds a
// fresh capture session once completed.
type AsyncExtractionJob struct {
	ID        string            `json:"id"`         // job_{uuid} (local identity)
	RequestID string            `json:"request_id"` // Backend job identifier
	SourceURL string            `json:"source_url"`
	Status    JobStatus         `json:"status"`
	Result    *ExtractionResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyStatus updates the job status, enforcing monotonicity: once the job
// is Completed or Failed, later reads can never move it to an earlier state.
func (j *AsyncExtractionJob) ApplyStatus(status JobStatus, result *ExtractionResult, errMsg string) bool {
	if j.Status.Terminal() {
		return false
	}
	j.Status = status
	if result != nil {
		j.Result = result
	}
	if errMsg != "" {
		j.Error = errMsg
	}
	j.UpdatedAt = time.Now()
	return true
}
