package capture

// SessionState tracks where a capture session is in its lifecycle.
// Transitions are enforced by the session; handlers only read the state.
type SessionState string

const (
	// StateIdle is the initial state before any input
	StateIdle SessionState = "idle"
	// StateAwaitingInput means input was classified but analysis has not run
	StateAwaitingInput SessionState = "awaiting_input"
	// StateAnalyzing means a remote extraction is in flight
	StateAnalyzing SessionState = "analyzing"
	// StateAnalyzed means extraction succeeded and the draft is populated
	StateAnalyzed SessionState = "analyzed"
	// StateAnalysisFailed means extraction failed; the draft is preserved
	StateAnalysisFailed SessionState = "analysis_failed"
	// StateQueuing means a queued-extraction job is being submitted
	StateQueuing SessionState = "queuing"
	// StateQueued means the source was handed off to a background job
	StateQueued SessionState = "queued"
	// StateReviewing means the user is editing the populated draft
	StateReviewing SessionState = "reviewing"
	// StateSubmitting means a submission is in flight
	StateSubmitting SessionState = "submitting"
	// StateSaved means the record was persisted; the draft has been cleared
	StateSaved SessionState = "saved"
	// StateSubmitFailed means submission failed; the draft is preserved
	StateSubmitFailed SessionState = "submit_failed"
)

// CanEdit reports whether draft fields may be mutated in this state.
// Edits during an in-flight submission would race the record assembly.
func (s SessionState) CanEdit() bool {
	switch s {
	case StateSubmitting, StateSaved:
		return false
	default:
		return true
	}
}

// CanSubmit reports whether a submission may start from this state.
func (s SessionState) CanSubmit() bool {
	switch s {
	case StateAnalyzed, StateReviewing, StateSubmitFailed:
		return true
	default:
		return false
	}
}

// CanAnalyze reports whether analysis may start from this state.
func (s SessionState) CanAnalyze() bool {
	switch s {
	case StateAnalyzing, StateQueuing, StateSubmitting:
		return false
	default:
		return true
	}
}
