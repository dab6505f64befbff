package extraction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// ProbeThumbnail discovers a page's preview image via metadata. The backend
// probe is tried first; when it comes back empty the page's og:image tag is
// parsed locally. An empty URL with a nil error means no thumbnail exists,
// which is not a failure.
func (c *Client) ProbeThumbnail(ctx context.Context, pageURL string) (string, error) {
	var resp probeResponse
	if err := c.post(ctx, "/metadata/probe", probeRequest{URL: pageURL}, &resp); err != nil {
		if c.logger != nil {
			c.logger.Debug().Err(err).Str("url", pageURL).Msg("Backend thumbnail probe failed")
		}
		// Fall through to the local probe; a probe failure must not
		// surface as an analysis error
	}
	if resp.ThumbnailURL != "" {
		return resp.ThumbnailURL, nil
	}

	if !c.probeFallback {
		return "", nil
	}
	return c.probeLocal(ctx, pageURL)
}

// probeLocal fetches the page and reads its og:image / twitter:image tags.
func (c *Client) probeLocal(ctx context.Context, pageURL string) (string, error) {
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}

	selectors := []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[name="twitter:image"]`,
	}
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if resolved := resolveRef(pageURL, content); resolved != "" {
				return resolved, nil
			}
		}
	}

	// link rel=image_src is rare but cheap to check
	if href, ok := doc.Find(`link[rel="image_src"]`).First().Attr("href"); ok {
		return resolveRef(pageURL, href), nil
	}

	return "", nil
}

// fetchPageMarkdown fetches the page body and converts it to markdown,
// used when extraction returns no raw content for an article.
func (c *Client) fetchPageMarkdown(ctx context.Context, pageURL string) (string, error) {
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}

	// Strip chrome that would pollute the stored content
	doc.Find("script, style, nav, footer, header, aside").Remove()

	html, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("page has no usable body")
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// fetchDocument fetches an external page (no credential) and parses it.
func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.pageClient.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch returned %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if c.maxProbeSize > 0 {
		body = io.LimitReader(resp.Body, c.maxProbeSize)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// resolveRef resolves a possibly relative image reference against the page URL.
func resolveRef(pageURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}
