package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/httpclient"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default per-call HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10
)

// Client talks to the knowledge-base backend: extraction, metadata probe,
// queued jobs, tags, uploads and record creation. Every operation is a
// single attempt with a bounded timeout; the pipeline never retries
// automatically.
type Client struct {
	baseURL     string
	credentials interfaces.CredentialProvider

	// httpClient carries the bearer credential on every request and is
	// used for backend calls only. pageClient fetches external pages for
	// the local probe fallback; the credential must never leave the backend.
	httpClient *http.Client
	pageClient *http.Client

	logger  arbor.ILogger
	limiter *rate.Limiter
	timeout time.Duration

	// Local probe fallback settings
	probeFallback bool
	userAgent     string
	maxProbeSize  int64
}

// Compile-time assertions
var (
	_ interfaces.ExtractionService = (*Client)(nil)
	_ interfaces.UploadService     = (*Client)(nil)
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for backend calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
		c.httpClient.Timeout = timeout
		c.pageClient.Timeout = timeout
	}
}

// WithProbeFallback enables local og: metadata parsing when the backend
// probe returns nothing.
func WithProbeFallback(userAgent string, maxProbeSize int64) ClientOption {
	return func(c *Client) {
		c.probeFallback = true
		c.userAgent = userAgent
		c.maxProbeSize = maxProbeSize
	}
}

// NewClient creates a new backend API client.
func NewClient(baseURL string, credentials interfaces.CredentialProvider, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     baseURL,
		credentials: credentials,
		httpClient:  httpclient.NewHTTPClientWithAuth(credentials, DefaultTimeout),
		pageClient:  httpclient.NewDefaultHTTPClient(DefaultTimeout),
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkCredential short-circuits credentialed operations before any dial.
func (c *Client) checkCredential() error {
	if c.credentials == nil || c.credentials.Token() == "" {
		return &models.AuthError{Reason: "missing bearer credential"}
	}
	return nil
}

// post performs an authenticated JSON POST to the API.
func (c *Client) post(ctx context.Context, path string, payload interface{}, result interface{}) error {
	if err := c.checkCredential(); err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug().Str("path", path).Msg("Backend API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransportError(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postMultipart performs an authenticated multipart file upload.
func (c *Client) postMultipart(ctx context.Context, path string, data []byte, filename string, fields map[string]string, result interface{}) error {
	if err := c.checkCredential(); err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if c.logger != nil {
		c.logger.Debug().Str("path", path).Str("filename", filename).Int("bytes", len(data)).Msg("Backend upload request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransportError(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// wrapTransportError maps timeouts to the typed sentinel so callers can
// surface RemoteTimeout instead of hanging semantics.
func (c *Client) wrapTransportError(path string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", path, models.ErrRemoteTimeout)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", path, models.ErrRemoteTimeout)
	}
	return fmt.Errorf("request to %s failed: %w", path, err)
}

// APIError represents a non-200 backend response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d for %s: %s", e.StatusCode, e.Endpoint, e.Message)
}
