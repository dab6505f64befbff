package extraction

import (
	"context"
	"strings"

	"github.com/ternarybob/colligo/internal/models"
)

// QueueExtraction enqueues a long-running extraction job on the backend
// and returns the backend request identifier.
func (c *Client) QueueExtraction(ctx context.Context, url string) (string, error) {
	var resp queueResponse
	if err := c.post(ctx, "/extract/queue", queueRequest{URL: url}, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.RequestID == "" {
		msg := resp.Error
		if msg == "" {
			msg = "queue submission rejected"
		}
		return "", models.ClassifyExtractionError(msg, nil)
	}
	return resp.RequestID, nil
}

// FetchQueuedResult reads the current status of a queued job. This is a
// pure idempotent read; cadence is decided by the caller.
func (c *Client) FetchQueuedResult(ctx context.Context, requestID string) (models.JobStatus, *models.ExtractionResult, string, error) {
	var resp queueStatusResponse
	if err := c.post(ctx, "/extract/queue/status", queueStatusRequest{RequestID: requestID}, &resp); err != nil {
		return "", nil, "", err
	}
	if !resp.Success && resp.Error != "" {
		return models.JobFailed, nil, resp.Error, nil
	}

	status := parseJobStatus(resp.Status)
	if status != models.JobCompleted {
		return status, nil, resp.Error, nil
	}

	result := &models.ExtractionResult{
		Title:        strings.TrimSpace(resp.Data.Metadata.Title),
		Description:  strings.TrimSpace(resp.Data.Metadata.Description),
		ContentKind:  models.KindVideo,
		TagNames:     resp.Data.Metadata.Tags,
		RawContent:   resp.Data.Content,
		ThumbnailURL: resp.Data.Metadata.Thumbnail,
	}
	return models.JobCompleted, result, "", nil
}

// parseJobStatus maps backend status strings onto the job lifecycle.
func parseJobStatus(s string) models.JobStatus {
	switch strings.ToLower(s) {
	case "queued", "pending":
		return models.JobQueued
	case "processing", "running":
		return models.JobProcessing
	case "completed", "done", "success":
		return models.JobCompleted
	case "failed", "error":
		return models.JobFailed
	default:
		return models.JobProcessing
	}
}
