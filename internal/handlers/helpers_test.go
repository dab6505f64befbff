package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/colligo/internal/models"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error maps to 400",
			err:        &models.ValidationError{Field: "title", Reason: "title is required"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "auth error maps to 401",
			err:        &models.AuthError{Reason: "bearer token not configured"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "submit in flight maps to 409",
			err:        models.ErrSubmitInFlight,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "extraction error maps to 502",
			err:        models.ClassifyExtractionError("fetch timed out", nil),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "wrapped extraction error still maps to 502",
			err:        models.ClassifyExtractionError("403 forbidden", errors.New("403")),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unclassified error maps to 500",
			err:        errors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			require.NoError(t, WriteDomainError(recorder, tt.err))
			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
		})
	}
}

func TestWriteDomainError_ExtractionGuidance(t *testing.T) {
	recorder := httptest.NewRecorder()
	err := models.ClassifyExtractionError("page could not retrieve", nil)
	require.NoError(t, WriteDomainError(recorder, err))

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, string(models.ExtractionNotRetrievable), body["category"])
	assert.NotEmpty(t, body["guidance"])
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Input string `json:"input"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"input":"x","bogus":true}`))
	assert.Error(t, DecodeJSON(req, &dst))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"input":"x"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Input)
}

func TestRequireMethod(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/capture", nil)

	assert.False(t, RequireMethod(recorder, req, "POST"))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)

	recorder = httptest.NewRecorder()
	assert.True(t, RequireMethod(recorder, req, "GET"))
}
