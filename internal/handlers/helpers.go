package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/colligo/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteDomainError maps pipeline errors to HTTP statuses. Extraction
// failures additionally carry user-facing guidance.
func WriteDomainError(w http.ResponseWriter, err error) error {
	var validationErr *models.ValidationError
	var authErr *models.AuthError
	var extractionErr *models.ExtractionError

	switch {
	case errors.As(err, &validationErr):
		return WriteError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &authErr):
		return WriteError(w, http.StatusUnauthorized, authErr.Error())
	case errors.Is(err, models.ErrSubmitInFlight):
		return WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &extractionErr):
		return WriteJSON(w, http.StatusBadGateway, map[string]string{
			"status":   "error",
			"error":    extractionErr.Error(),
			"category": string(extractionErr.Category),
			"guidance": extractionErr.Guidance(),
		})
	default:
		return WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// DecodeJSON decodes a request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
