package models

// ContentRecord is the final immutable payload submitted to the backend.
// ThumbnailURL is a pointer: absence (nil), not an empty string, signals
// that no thumbnail was resolved.
type ContentRecord struct {
	Link          string   `json:"link" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	ContentType   string   `json:"contentType" validate:"required"`
	Description   string   `json:"description"`
	RawContent    string   `json:"rawContent"`
	PersonalNotes string   `json:"personalNotes"`
	TagIDs        []string `json:"tagIds"`
	ThumbnailURL  *string  `json:"thumbnailUrl,omitempty"`
}

// SubmitResult is what the coordinator hands back to the session on success.
type SubmitResult struct {
	RecordID string        `json:"record_id"`
	Record   ContentRecord `json:"record"`

	// SkippedTags lists tag names that failed to resolve and were dropped
	// from the record, so the UI can surface a partial-failure notice.
	SkippedTags []string `json:"skipped_tags,omitempty"`
}
