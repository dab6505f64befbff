package common

import (
	"github.com/google/uuid"
)

// NewDraftID generates a unique capture draft ID with the "draft_" prefix
// Format: draft_<uuid>
func NewDraftID() string {
	return "draft_" + uuid.New().String()
}

// NewJobID generates a unique extraction job ID with the "job_" prefix
// Format: job_<uuid>
func NewJobID() string {
	return "job_" + uuid.New().String()
}
