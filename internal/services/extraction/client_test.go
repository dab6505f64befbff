package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

func newTestClient(baseURL string, opts ...ClientOption) *Client {
	opts = append([]ClientOption{WithLogger(arbor.NewLogger())}, opts...)
	return NewClient(baseURL, interfaces.StaticCredential("test-token"), opts...)
}

func TestClient_MissingCredentialShortCircuits(t *testing.T) {
	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer server.Close()

	client := NewClient(server.URL, interfaces.StaticCredential(""), WithLogger(arbor.NewLogger()))

	_, err := client.Extract(context.Background(), "https://example.com")
	require.Error(t, err)

	var authErr *models.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.False(t, requested, "no request should be made without a credential")
}

func TestClient_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extract", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req extractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com/post", req.URL)

		json.NewEncoder(w).Encode(extractResponse{
			Title:       "  A Post  ",
			Summary:     "About things",
			ContentType: "article",
			Tags:        []string{"go"},
			RawContent:  "# body",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.Extract(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "A Post", result.Title)
	assert.Equal(t, "About things", result.Description)
	assert.Equal(t, models.KindArticle, result.ContentKind)
	assert.Equal(t, []string{"go"}, result.TagNames)
	assert.Equal(t, "# body", result.RawContent)
}

func TestClient_Extract_ContentFieldFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{
			Title:       "Clip",
			Content:     "Summary under the content key",
			ContentType: "video",
			RawContent:  "transcript",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.Extract(context.Background(), "https://example.com/clip")
	require.NoError(t, err)
	assert.Equal(t, "Summary under the content key", result.Description)
	assert.Equal(t, models.KindVideo, result.ContentKind)
}

func TestClient_Extract_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		respErr  string
		expected models.ExtractionCategory
	}{
		{"not retrievable", "could not retrieve the document", models.ExtractionNotRetrievable},
		{"blocked", "request blocked by upstream", models.ExtractionBlocked},
		{"timeout", "extraction timed out", models.ExtractionTimedOut},
		{"unknown", "parser exploded", models.ExtractionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(extractResponse{Error: tt.respErr})
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			_, err := client.Extract(context.Background(), "https://example.com")
			require.Error(t, err)

			var extErr *models.ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.expected, extErr.Category)
		})
	}
}

func TestClient_Extract_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Extract(context.Background(), "https://example.com")
	require.Error(t, err)

	var extErr *models.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, models.ExtractionBlocked, extErr.Category)
}

func TestClient_ExtractFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "paper.pdf", header.Filename)
		assert.Equal(t, "pdf", r.FormValue("kind"))

		json.NewEncoder(w).Encode(uploadResponse{
			FileURL:      "https://store.example.com/files/paper.pdf",
			OriginalName: "paper.pdf",
		})
	})
	mux.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		var req extractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://store.example.com/files/paper.pdf", req.URL)

		json.NewEncoder(w).Encode(extractResponse{
			Title:       "Paper",
			ContentType: "pdf",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	result, fileURL, err := client.ExtractFile(context.Background(), []byte("%PDF-1.4"), "paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com/files/paper.pdf", fileURL)
	assert.Equal(t, "Paper", result.Title)
	assert.Equal(t, models.KindPDF, result.ContentKind)
}

func TestClient_RefineText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/refine", r.URL.Path)
		var req refineRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		json.NewEncoder(w).Encode(extractResponse{
			Title:   "Idea",
			Summary: "A summary",
			Tags:    []string{"idea"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.RefineText(context.Background(), "raw thought about things")
	require.NoError(t, err)
	assert.Equal(t, models.KindIdeation, result.ContentKind)
	assert.Equal(t, "raw thought about things", result.RawContent, "input text becomes the content when refine returns none")
}

func TestClient_ProbeThumbnail_Backend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/metadata/probe", r.URL.Path)
		json.NewEncoder(w).Encode(probeResponse{ThumbnailURL: "https://cdn.example.com/og.png"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	url, err := client.ProbeThumbnail(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/og.png", url)
}

func TestClient_ProbeThumbnail_LocalFallback(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "the backend credential must not reach external pages")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><meta property="og:image" content="/images/hero.jpg"></head><body></body></html>`))
	}))
	defer page.Close()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Backend has nothing for this page
		json.NewEncoder(w).Encode(probeResponse{})
	}))
	defer backend.Close()

	client := newTestClient(backend.URL, WithProbeFallback("test-agent", 1<<20))

	url, err := client.ProbeThumbnail(context.Background(), page.URL+"/post")
	require.NoError(t, err)
	assert.Equal(t, page.URL+"/images/hero.jpg", url, "relative og:image resolves against the page URL")
}

func TestClient_CreateRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/records", r.URL.Path)

		var record models.ContentRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		assert.Equal(t, "https://example.com/post", record.Link)
		assert.Nil(t, record.ThumbnailURL)

		json.NewEncoder(w).Encode(createRecordResponse{Success: true, ID: "rec_123"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	id, err := client.CreateRecord(context.Background(), &models.ContentRecord{
		Link:        "https://example.com/post",
		Title:       "A Post",
		ContentType: "article",
	})
	require.NoError(t, err)
	assert.Equal(t, "rec_123", id)
}

func TestClient_TagEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tags/lookup", func(w http.ResponseWriter, r *http.Request) {
		var req tagLookupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.TagName == "golang" {
			json.NewEncoder(w).Encode(tagLookupResponse{Success: true, Found: true, TagID: "tag_1"})
			return
		}
		json.NewEncoder(w).Encode(tagLookupResponse{Success: true, Found: false})
	})
	mux.HandleFunc("/tags/create", func(w http.ResponseWriter, r *http.Request) {
		var req tagCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.ColorCode)
		json.NewEncoder(w).Encode(tagCreateResponse{Success: true, TagID: "tag_2"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	found, id, err := client.LookupTag(context.Background(), "golang")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tag_1", id)

	found, _, err = client.LookupTag(context.Background(), "newtag")
	require.NoError(t, err)
	assert.False(t, found)

	id, err = client.CreateTag(context.Background(), "newtag", "#4C6EF5", "")
	require.NoError(t, err)
	assert.Equal(t, "tag_2", id)
}
