package models

import (
	"fmt"
	"strings"
	"time"
)

// MaxTagsPerDraft is the tag cap applied when the caller does not supply
// a positive limit of its own.
const MaxTagsPerDraft = 10

// SourceRef identifies what a draft captures: a URL or an uploaded file.
// The two are mutually exclusive per draft.
type SourceRef struct {
	URL      string `json:"url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileURL  string `json:"file_url,omitempty"` // Storage URL assigned after upload
}

// IsEmpty reports whether the draft has no source reference yet.
func (s SourceRef) IsEmpty() bool {
	return s.URL == "" && s.FileName == "" && s.FileURL == ""
}

// Ref returns the canonical reference string used in the final record:
// the URL for link captures, the storage URL for file captures.
func (s SourceRef) Ref() string {
	if s.URL != "" {
		return s.URL
	}
	return s.FileURL
}

// CaptureDraft is the single mutable unit of work for one capture.
// All mutation goes through the owning session, which serializes writes.
type CaptureDraft struct {
	ID            string         `json:"id"` // draft_{uuid}
	Source        SourceRef      `json:"source"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	PersonalNotes string         `json:"personal_notes"`
	ContentKind   ContentKind    `json:"content_kind"`
	TagNames      []string       `json:"tag_names"` // Ordered, unique, capped
	RawContent    string         `json:"raw_content,omitempty"`
	Thumbnail     ThumbnailState `json:"thumbnail"`

	// TitleEdited records that the user typed the title by hand, so a
	// placeholder extraction title never clobbers it on re-analysis.
	TitleEdited bool `json:"title_edited"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCaptureDraft creates an empty draft.
func NewCaptureDraft(id string) *CaptureDraft {
	now := time.Now()
	return &CaptureDraft{
		ID:          id,
		ContentKind: KindOther,
		Thumbnail:   NoThumbnail(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetSourceURL sets a URL source, clearing any uploaded-file reference.
func (d *CaptureDraft) SetSourceURL(url string) {
	d.Source = SourceRef{URL: strings.TrimSpace(url)}
	d.UpdatedAt = time.Now()
}

// SetSourceFile sets an uploaded-file source, clearing any URL reference.
// fileURL may be empty until the upload completes.
func (d *CaptureDraft) SetSourceFile(fileName, fileURL string) {
	d.Source = SourceRef{FileName: fileName, FileURL: fileURL}
	d.UpdatedAt = time.Now()
}

// AddTag appends a tag name, preserving case and order. Duplicates
// (case-insensitive) are ignored; the count never exceeds limit.
// A non-positive limit falls back to MaxTagsPerDraft.
func (d *CaptureDraft) AddTag(name string, limit int) error {
	if limit <= 0 {
		limit = MaxTagsPerDraft
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("tag name cannot be empty")
	}
	for _, existing := range d.TagNames {
		if strings.EqualFold(existing, name) {
			return nil
		}
	}
	if len(d.TagNames) >= limit {
		return fmt.Errorf("draft already has %d tags", limit)
	}
	d.TagNames = append(d.TagNames, name)
	d.UpdatedAt = time.Now()
	return nil
}

// RemoveTag removes a tag by name (case-insensitive).
func (d *CaptureDraft) RemoveTag(name string) {
	for i, existing := range d.TagNames {
		if strings.EqualFold(existing, name) {
			d.TagNames = append(d.TagNames[:i], d.TagNames[i+1:]...)
			d.UpdatedAt = time.Now()
			return
		}
	}
}

// ApplyExtraction merges an extraction result into the draft. Extraction
// output overwrites draft fields, with one exception: a placeholder title
// (the untitled sentinel) never replaces a user-edited title.
func (d *CaptureDraft) ApplyExtraction(result *ExtractionResult, untitledSentinel string, maxTags int) {
	if result == nil {
		return
	}

	if result.Title != "" {
		placeholder := untitledSentinel != "" && strings.EqualFold(result.Title, untitledSentinel)
		if !placeholder || !d.TitleEdited {
			d.Title = result.Title
		}
	}
	if result.Description != "" {
		d.Description = result.Description
	}
	if result.ContentKind != "" {
		d.ContentKind = result.ContentKind
	}
	if result.RawContent != "" {
		d.RawContent = result.RawContent
	}
	for _, tag := range result.TagNames {
		// Tag cap applies regardless of where the tag came from
		_ = d.AddTag(tag, maxTags)
	}
	d.UpdatedAt = time.Now()
}

// Validate checks the draft is submittable: non-empty title and source.
func (d *CaptureDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "title is required"}
	}
	if d.Source.IsEmpty() {
		return &ValidationError{Field: "source", Reason: "a URL or uploaded file is required"}
	}
	return nil
}

// Reset clears the draft back to its empty state after a successful save
// or an explicit cancel. The draft ID is retained.
func (d *CaptureDraft) Reset() {
	id := d.ID
	created := d.CreatedAt
	*d = *NewCaptureDraft(id)
	d.CreatedAt = created
}
