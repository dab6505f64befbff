package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across the pipeline.
var (
	// ErrSubmitInFlight is returned when submit is re-invoked while a prior
	// submission for the same session is still pending.
	ErrSubmitInFlight = errors.New("a submission is already in flight")

	// ErrRemoteTimeout is wrapped into remote-call errors when the bounded
	// per-call timeout elapses.
	ErrRemoteTimeout = errors.New("remote call timed out")
)

// ValidationError reports a missing or invalid draft field. It is always
// raised before any network call and is recoverable locally.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// ExtractionCategory classifies remote extraction failures so the UI can
// show category-specific guidance.
type ExtractionCategory string

const (
	ExtractionNotRetrievable ExtractionCategory = "not_retrievable"
	ExtractionTimedOut       ExtractionCategory = "timed_out"
	ExtractionBlocked        ExtractionCategory = "blocked"
	ExtractionUnknown        ExtractionCategory = "unknown"
)

// ExtractionError reports a failed remote extraction. Message carries the
// backend's error text verbatim where available.
type ExtractionError struct {
	Category ExtractionCategory
	Message  string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("extraction failed (%s): %s", e.Category, e.Message)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Category)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Guidance returns user-facing advice for the error category.
func (e *ExtractionError) Guidance() string {
	switch e.Category {
	case ExtractionNotRetrievable:
		return "The document could not be retrieved. Check the link is publicly reachable, or save it with a manual title and description."
	case ExtractionTimedOut:
		return "The request timed out. The page may be slow; try again in a moment."
	case ExtractionBlocked:
		return "Access to the page was blocked. Paste the content as a raw idea instead."
	default:
		return "Extraction failed. You can still fill in the details manually and save."
	}
}

// ClassifyExtractionError derives a category by matching backend error text.
func ClassifyExtractionError(message string, err error) *ExtractionError {
	lower := strings.ToLower(message)
	category := ExtractionUnknown
	switch {
	case errors.Is(err, ErrRemoteTimeout),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "timeout"):
		category = ExtractionTimedOut
	case strings.Contains(lower, "not found"),
		strings.Contains(lower, "could not retrieve"),
		strings.Contains(lower, "unreachable"),
		strings.Contains(lower, "failed to fetch"):
		category = ExtractionNotRetrievable
	case strings.Contains(lower, "403"),
		strings.Contains(lower, "forbidden"),
		strings.Contains(lower, "blocked"),
		strings.Contains(lower, "captcha"):
		category = ExtractionBlocked
	}
	return &ExtractionError{Category: category, Message: message, Err: err}
}

// ThumbnailDerivationError is non-fatal: it downgrades the thumbnail to
// Failed and never blocks analysis or submission.
type ThumbnailDerivationError struct {
	Kind   ContentKind
	Reason string
}

func (e *ThumbnailDerivationError) Error() string {
	return fmt.Sprintf("thumbnail derivation failed for %s: %s", e.Kind, e.Reason)
}

// TagResolutionError reports a single tag that failed lookup or creation.
// The batch continues; the name is skipped.
type TagResolutionError struct {
	TagName string
	Err     error
}

func (e *TagResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve tag %q: %v", e.TagName, e.Err)
}

func (e *TagResolutionError) Unwrap() error {
	return e.Err
}

// UploadError is fatal to the current submission attempt. The draft is
// preserved so the user may retry.
type UploadError struct {
	Operation string // "upload_blob", "store_remote", "create_record"
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// AuthError reports a missing or expired credential. It short-circuits
// before any network call for credentialed operations.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}
