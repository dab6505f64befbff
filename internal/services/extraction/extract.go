package extraction

import (
	"context"
	"strings"

	"github.com/ternarybob/colligo/internal/models"
)

// Extract performs synchronous URL extraction against the backend.
func (c *Client) Extract(ctx context.Context, url string) (*models.ExtractionResult, error) {
	var resp extractResponse
	if err := c.post(ctx, "/extract", extractRequest{URL: url}, &resp); err != nil {
		return nil, models.ClassifyExtractionError(err.Error(), err)
	}
	if resp.Error != "" {
		return nil, models.ClassifyExtractionError(resp.Error, nil)
	}

	result := resultFromResponse(&resp)

	// Articles sometimes come back without raw content; fill it in locally
	// so the record keeps the full text for search.
	if result.RawContent == "" && result.ContentKind == models.KindArticle && c.probeFallback {
		if markdown, err := c.fetchPageMarkdown(ctx, url); err == nil && markdown != "" {
			result.RawContent = markdown
		} else if err != nil && c.logger != nil {
			c.logger.Debug().Err(err).Str("url", url).Msg("Local raw content fallback failed")
		}
	}

	return result, nil
}

// ExtractFile uploads file bytes and extracts metadata from them. The
// returned storage URL becomes the draft's source reference, so the blob
// is never uploaded a second time at submit.
func (c *Client) ExtractFile(ctx context.Context, data []byte, filename string) (*models.ExtractionResult, string, error) {
	var upload uploadResponse
	fields := map[string]string{"kind": kindFromFilename(filename)}
	if err := c.postMultipart(ctx, "/upload", data, filename, fields, &upload); err != nil {
		return nil, "", models.ClassifyExtractionError(err.Error(), err)
	}
	if upload.FileURL == "" {
		return nil, "", models.ClassifyExtractionError("upload returned no file URL", nil)
	}

	// The stored file is extracted like any other URL source
	var resp extractResponse
	if err := c.post(ctx, "/extract", extractRequest{URL: upload.FileURL}, &resp); err != nil {
		return nil, upload.FileURL, models.ClassifyExtractionError(err.Error(), err)
	}
	if resp.Error != "" {
		return nil, upload.FileURL, models.ClassifyExtractionError(resp.Error, nil)
	}

	result := resultFromResponse(&resp)
	if result.ContentKind == models.KindOther {
		result.ContentKind = models.ParseContentKind(kindFromFilename(filename))
	}
	return result, upload.FileURL, nil
}

// RefineText enriches free-form ideation text with tags and a summary.
// The text itself is already the content; only enrichment is requested.
func (c *Client) RefineText(ctx context.Context, text string) (*models.ExtractionResult, error) {
	var resp extractResponse
	if err := c.post(ctx, "/refine", refineRequest{Text: text}, &resp); err != nil {
		return nil, models.ClassifyExtractionError(err.Error(), err)
	}
	if resp.Error != "" {
		return nil, models.ClassifyExtractionError(resp.Error, nil)
	}

	result := resultFromResponse(&resp)
	result.ContentKind = models.KindIdeation
	if result.RawContent == "" {
		result.RawContent = text
	}
	return result, nil
}

// resultFromResponse normalizes the backend response shape. The backend
// reports the summary under either "summary" or "content".
func resultFromResponse(resp *extractResponse) *models.ExtractionResult {
	description := resp.Summary
	if description == "" {
		description = resp.Content
	}
	return &models.ExtractionResult{
		Title:       strings.TrimSpace(resp.Title),
		Description: strings.TrimSpace(description),
		ContentKind: models.ParseContentKind(resp.ContentType),
		TagNames:    resp.Tags,
		RawContent:  resp.RawContent,
	}
}

// kindFromFilename guesses a content kind tag from the file extension.
func kindFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return string(models.KindPDF)
	case strings.HasSuffix(lower, ".mp4"),
		strings.HasSuffix(lower, ".webm"),
		strings.HasSuffix(lower, ".mov"),
		strings.HasSuffix(lower, ".mkv"):
		return string(models.KindVideo)
	case strings.HasSuffix(lower, ".png"),
		strings.HasSuffix(lower, ".jpg"),
		strings.HasSuffix(lower, ".jpeg"),
		strings.HasSuffix(lower, ".gif"),
		strings.HasSuffix(lower, ".webp"):
		return string(models.KindImage)
	default:
		return string(models.KindOther)
	}
}
