package extraction

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// UploadBlob uploads image/file bytes (multipart) and returns the assigned
// storage URL.
func (c *Client) UploadBlob(ctx context.Context, data []byte, filename, kind string) (string, error) {
	var resp uploadResponse
	fields := map[string]string{"kind": kind}
	if err := c.postMultipart(ctx, "/upload", data, filename, fields, &resp); err != nil {
		return "", &models.UploadError{Operation: "upload_blob", Err: err}
	}
	if resp.FileURL == "" {
		return "", &models.UploadError{Operation: "upload_blob", Err: &APIError{Endpoint: "/upload", Message: "no file URL returned"}}
	}
	return resp.FileURL, nil
}

// StoreRemoteImage asks the backend to fetch-and-store a remote image URL
// and returns the assigned storage URL.
func (c *Client) StoreRemoteImage(ctx context.Context, imageURL string) (string, error) {
	var resp storeImageResponse
	if err := c.post(ctx, "/images/store", storeImageRequest{ImageURL: imageURL}, &resp); err != nil {
		return "", &models.UploadError{Operation: "store_remote", Err: err}
	}
	if !resp.Success || resp.FileURL == "" {
		return "", &models.UploadError{Operation: "store_remote", Err: &APIError{Endpoint: "/images/store", Message: "no file URL returned"}}
	}
	return resp.FileURL, nil
}

// CreateRecord persists the final content record and returns its ID.
func (c *Client) CreateRecord(ctx context.Context, record *models.ContentRecord) (string, error) {
	var resp createRecordResponse
	if err := c.post(ctx, "/records", record, &resp); err != nil {
		return "", &models.UploadError{Operation: "create_record", Err: err}
	}
	if !resp.Success {
		return "", &models.UploadError{Operation: "create_record", Err: &APIError{Endpoint: "/records", Message: resp.Error}}
	}
	return resp.ID, nil
}
