package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobQueued.Terminal())
	assert.False(t, JobProcessing.Terminal())
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobFailed.Terminal())
}

func TestAsyncExtractionJob_ApplyStatus(t *testing.T) {
	job := &AsyncExtractionJob{ID: "job_test", Status: JobQueued}

	assert.True(t, job.ApplyStatus(JobProcessing, nil, ""))
	assert.Equal(t, JobProcessing, job.Status)

	result := &ExtractionResult{Title: "Video Title", ContentKind: KindVideo}
	assert.True(t, job.ApplyStatus(JobCompleted, result, ""))
	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, result, job.Result)

	// Terminal statuses never regress
	assert.False(t, job.ApplyStatus(JobProcessing, nil, ""))
	assert.Equal(t, JobCompleted, job.Status)
	assert.False(t, job.ApplyStatus(JobFailed, nil, "late failure"))
	assert.Equal(t, JobCompleted, job.Status)
	assert.Empty(t, job.Error)
}

func TestAsyncExtractionJob_ApplyStatus_Failure(t *testing.T) {
	job := &AsyncExtractionJob{ID: "job_test", Status: JobProcessing}

	assert.True(t, job.ApplyStatus(JobFailed, nil, "upstream rejected the URL"))
	assert.Equal(t, JobFailed, job.Status)
	assert.Equal(t, "upstream rejected the URL", job.Error)

	assert.False(t, job.ApplyStatus(JobCompleted, &ExtractionResult{}, ""))
	assert.Equal(t, JobFailed, job.Status)
}

func TestParseContentKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ContentKind
	}{
		{"article", KindArticle},
		{"video", KindVideo},
		{"pdf", KindPDF},
		{"image", KindImage},
		{"tweet", KindTweet},
		{"ideation", KindIdeation},
		{"other", KindOther},
		{"", KindOther},
		{"podcast", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseContentKind(tt.input))
		})
	}
}

func TestContentKind_DerivesLocally(t *testing.T) {
	assert.True(t, KindVideo.DerivesLocally())
	assert.True(t, KindPDF.DerivesLocally())
	assert.True(t, KindImage.DerivesLocally())
	assert.False(t, KindArticle.DerivesLocally())
	assert.False(t, KindTweet.DerivesLocally())
	assert.False(t, KindIdeation.DerivesLocally())
	assert.False(t, KindOther.DerivesLocally())
}
