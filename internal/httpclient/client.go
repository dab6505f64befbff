package httpclient

import (
	"net/http"
	"time"

	"github.com/ternarybob/colligo/internal/interfaces"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// bearerTransport injects the current bearer credential into every request.
// The token is read per request so credential rotation takes effect
// without rebuilding clients.
type bearerTransport struct {
	base        http.RoundTripper
	credentials interfaces.CredentialProvider
}

// RoundTrip implements http.RoundTripper
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.credentials.Token(); token != "" {
		// Clone before mutating: RoundTrippers must not modify the caller's request
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClientWithAuth creates an HTTP client that attaches the bearer
// credential from the provider to every outgoing request.
func NewHTTPClientWithAuth(credentials interfaces.CredentialProvider, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &bearerTransport{
			base:        http.DefaultTransport,
			credentials: credentials,
		},
	}
}
