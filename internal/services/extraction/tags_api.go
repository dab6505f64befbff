package extraction

import (
	"context"
	"fmt"
)

// LookupTag finds a tag by exact case-preserved name.
func (c *Client) LookupTag(ctx context.Context, name string) (found bool, id string, err error) {
	var resp tagLookupResponse
	if err := c.post(ctx, "/tags/lookup", tagLookupRequest{TagName: name}, &resp); err != nil {
		return false, "", err
	}
	if !resp.Success {
		return false, "", fmt.Errorf("tag lookup rejected for %q", name)
	}
	return resp.Found, resp.TagID, nil
}

// CreateTag creates a new tag and returns its ID.
func (c *Client) CreateTag(ctx context.Context, name, colorHex, description string) (string, error) {
	var resp tagCreateResponse
	req := tagCreateRequest{TagName: name, ColorCode: colorHex, Description: description}
	if err := c.post(ctx, "/tags/create", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.TagID == "" {
		return "", fmt.Errorf("tag creation rejected for %q", name)
	}
	return resp.TagID, nil
}
