package capture

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/bep/debounce"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Session owns one capture draft and serializes all mutation of it.
// Remote calls run outside the lock; results are merged back under it.
type Session struct {
	mu    sync.Mutex
	draft *models.CaptureDraft
	state SessionState

	// lastError holds the most recent analysis failure for UI guidance
	lastError *models.ExtractionError
	jobID     string

	// Pending raw input, held until analysis consumes it
	inputText string
	fileData  []byte

	// generation supersedes in-flight thumbnail work. Derivations cannot
	// be aborted mid-flight; stale results are discarded on arrival.
	generation uint64
	debounced  func(f func())

	extractor interfaces.ExtractionService
	uploader  interfaces.UploadService
	deriver   interfaces.ThumbnailDeriver
	poller    interfaces.JobPoller
	submitter interfaces.SubmissionCoordinator
	drafts    interfaces.DraftStorage
	events    interfaces.EventService
	config    common.CaptureConfig
	logger    arbor.ILogger
}

// View is an immutable snapshot of a session for handlers to render.
type View struct {
	ID            string               `json:"id"`
	State         SessionState         `json:"state"`
	Draft         models.CaptureDraft  `json:"draft"`
	JobID         string               `json:"job_id,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
	ErrorGuidance string               `json:"error_guidance,omitempty"`
}

func newSession(deps Deps) *Session {
	return &Session{
		draft:     models.NewCaptureDraft(common.NewDraftID()),
		state:     StateIdle,
		debounced: debounce.New(deps.Config.DebounceWindow),
		extractor: deps.Extractor,
		uploader:  deps.Uploader,
		deriver:   deps.Deriver,
		poller:    deps.Poller,
		submitter: deps.Submitter,
		drafts:    deps.Drafts,
		events:    deps.Events,
		config:    deps.Config,
		logger:    deps.Logger,
	}
}

// ID returns the session's draft ID, which doubles as the session key.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.ID
}

// Snapshot returns a copy of the session's visible state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	draft := *s.draft
	draft.TagNames = append([]string(nil), s.draft.TagNames...)
	v := View{
		ID:    s.draft.ID,
		State: s.state,
		Draft: draft,
		JobID: s.jobID,
	}
	if s.lastError != nil {
		v.ErrorMessage = s.lastError.Error()
		v.ErrorGuidance = s.lastError.Guidance()
	}
	return v
}

// SetInput classifies free-form input as a URL or ideation text and
// records it on the draft. A source change supersedes any in-flight
// thumbnail work and schedules a new derivation after the debounce window.
func (s *Session) SetInput(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return &models.ValidationError{Field: "input", Reason: "input cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanEdit() {
		return fmt.Errorf("session is %s, input cannot change", s.state)
	}

	if isURL(input) {
		s.draft.SetSourceURL(input)
		s.inputText = ""
		s.fileData = nil
		s.scheduleThumbnailLocked()
	} else {
		s.inputText = input
		s.draft.Source = models.SourceRef{}
		s.draft.ContentKind = models.KindIdeation
		s.fileData = nil
	}

	s.state = StateAwaitingInput
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventDraftUpdated, s.viewLocked())
	return nil
}

// SetFile attaches uploaded file bytes as the draft's source. The storage
// URL is assigned during analysis, after the upload completes.
func (s *Session) SetFile(ctx context.Context, data []byte, filename string) error {
	if len(data) == 0 {
		return &models.ValidationError{Field: "file", Reason: "file is empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanEdit() {
		return fmt.Errorf("session is %s, input cannot change", s.state)
	}

	s.fileData = data
	s.inputText = ""
	s.draft.SetSourceFile(filename, "")
	s.draft.ContentKind = kindFromFilename(filename)
	s.state = StateAwaitingInput
	s.scheduleThumbnailLocked()
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventDraftUpdated, s.viewLocked())
	return nil
}

// Analyze runs remote extraction for the current input. Queued domains
// are handed off to the background poller instead; the session parks in
// Queued and a fresh session is seeded from the job once it completes.
func (s *Session) Analyze(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.CanAnalyze() {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session is %s, analysis cannot start", state)
	}

	sourceURL := s.draft.Source.URL
	fileName := s.draft.Source.FileName
	storedURL := s.draft.Source.FileURL
	fileData := s.fileData
	inputText := s.inputText

	if sourceURL == "" && len(fileData) == 0 && inputText == "" {
		s.mu.Unlock()
		return &models.ValidationError{Field: "input", Reason: "nothing to analyze"}
	}

	if sourceURL != "" && s.poller.IsQueuedDomain(sourceURL) {
		s.state = StateQueuing
		s.mu.Unlock()
		return s.queueExtraction(ctx, sourceURL)
	}

	s.state = StateAnalyzing
	s.lastError = nil
	s.mu.Unlock()
	s.publish(ctx, interfaces.EventAnalysisStarted, s.draft.ID)

	result, fileURL, err := s.runExtraction(ctx, sourceURL, storedURL, fileData, fileName, inputText)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The storage URL survives an extraction failure so a retry never
	// uploads the same bytes twice.
	if fileURL != "" {
		s.draft.Source.FileURL = fileURL
	}

	if err != nil {
		extErr, ok := err.(*models.ExtractionError)
		if !ok {
			extErr = models.ClassifyExtractionError(err.Error(), err)
		}
		s.lastError = extErr
		s.state = StateAnalysisFailed
		s.persistLocked(ctx)
		s.publish(ctx, interfaces.EventAnalysisFailed, s.viewLocked())
		return extErr
	}
	s.draft.ApplyExtraction(result, s.config.UntitledSentinel, s.config.MaxTags)
	s.state = StateAnalyzed
	s.applyResultThumbnailLocked(ctx, result)
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventAnalysisCompleted, s.viewLocked())

	s.logger.Info().
		Str("draft_id", s.draft.ID).
		Str("kind", string(s.draft.ContentKind)).
		Str("title", s.draft.Title).
		Msg("Analysis completed")

	return nil
}

// runExtraction performs the remote call for whichever input is present.
// It returns the storage URL for uploaded sources. A storage URL assigned
// on an earlier attempt is reused; the bytes are never uploaded again.
func (s *Session) runExtraction(ctx context.Context, sourceURL, storedURL string, fileData []byte, fileName, inputText string) (*models.ExtractionResult, string, error) {
	switch {
	case sourceURL != "":
		result, err := s.extractor.Extract(ctx, sourceURL)
		return result, "", err

	case len(fileData) > 0:
		if storedURL != "" {
			result, err := s.extractor.Extract(ctx, storedURL)
			return result, storedURL, err
		}
		return s.extractor.ExtractFile(ctx, fileData, fileName)

	default:
		result, err := s.extractor.RefineText(ctx, inputText)
		if err != nil {
			return nil, storedURL, err
		}
		if storedURL != "" {
			return result, storedURL, nil
		}
		// Ideation text is stored as a file so the record has a link
		fileURL, err := s.uploader.UploadBlob(ctx, []byte(inputText), "idea.txt", "ideation")
		if err != nil {
			return nil, "", fmt.Errorf("failed to store ideation text: %w", err)
		}
		s.mu.Lock()
		s.draft.SetSourceFile("idea.txt", "")
		s.mu.Unlock()
		return result, fileURL, nil
	}
}

func (s *Session) queueExtraction(ctx context.Context, sourceURL string) error {
	job, err := s.poller.Submit(ctx, sourceURL)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		extErr := models.ClassifyExtractionError(err.Error(), err)
		s.lastError = extErr
		s.state = StateAnalysisFailed
		s.publish(ctx, interfaces.EventAnalysisFailed, s.viewLocked())
		return extErr
	}

	s.jobID = job.ID
	s.state = StateQueued
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventJobQueued, job)

	return nil
}

// EditField updates one draft field. Editing the title marks it
// user-owned so a placeholder extraction title never overwrites it.
func (s *Session) EditField(ctx context.Context, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanEdit() {
		return fmt.Errorf("session is %s, fields cannot be edited", s.state)
	}

	switch field {
	case "title":
		s.draft.Title = value
		s.draft.TitleEdited = true
	case "description":
		s.draft.Description = value
	case "personal_notes":
		s.draft.PersonalNotes = value
	case "raw_content":
		s.draft.RawContent = value
	default:
		return &models.ValidationError{Field: field, Reason: "unknown field"}
	}

	if s.state == StateAnalyzed {
		s.state = StateReviewing
	}
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventDraftUpdated, s.viewLocked())
	return nil
}

// AddTag appends a tag to the draft.
func (s *Session) AddTag(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanEdit() {
		return fmt.Errorf("session is %s, tags cannot be edited", s.state)
	}
	if err := s.draft.AddTag(name, s.config.MaxTags); err != nil {
		return err
	}
	if s.state == StateAnalyzed {
		s.state = StateReviewing
	}
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventDraftUpdated, s.viewLocked())
	return nil
}

// RemoveTag removes a tag from the draft.
func (s *Session) RemoveTag(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanEdit() {
		return fmt.Errorf("session is %s, tags cannot be edited", s.state)
	}
	s.draft.RemoveTag(name)
	if s.state == StateAnalyzed {
		s.state = StateReviewing
	}
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventDraftUpdated, s.viewLocked())
	return nil
}

// Submit assembles and persists the final record. Validation failures
// are raised before any network call; a failed submission preserves the
// draft for retry.
func (s *Session) Submit(ctx context.Context) (*models.SubmitResult, error) {
	s.mu.Lock()
	if !s.state.CanSubmit() {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("session is %s, submission cannot start", state)
	}
	if err := s.draft.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.state = StateSubmitting
	snapshot := *s.draft
	snapshot.TagNames = append([]string(nil), s.draft.TagNames...)
	s.mu.Unlock()

	result, err := s.submitter.Submit(ctx, &snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateSubmitFailed
		s.publish(ctx, interfaces.EventSubmitFailed, map[string]string{
			"draft_id": s.draft.ID,
			"error":    err.Error(),
		})
		return nil, err
	}

	s.logger.Info().
		Str("draft_id", s.draft.ID).
		Str("record_id", result.RecordID).
		Int("skipped_tags", len(result.SkippedTags)).
		Msg("Record saved")

	s.clearLocked(ctx)
	s.state = StateSaved
	s.publish(ctx, interfaces.EventRecordSaved, result)
	return result, nil
}

// Cancel discards the draft and returns the session to Idle.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return fmt.Errorf("session is %s, cancel must wait", s.state)
	}

	s.clearLocked(ctx)
	s.state = StateIdle
	s.publish(ctx, interfaces.EventDraftUpdated, s.viewLocked())
	return nil
}

// seedFromJob populates the session from a completed extraction job,
// landing it directly in Analyzed.
func (s *Session) seedFromJob(ctx context.Context, job *models.AsyncExtractionJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.SetSourceURL(job.SourceURL)
	s.draft.ApplyExtraction(job.Result, s.config.UntitledSentinel, s.config.MaxTags)
	s.state = StateAnalyzed
	s.applyResultThumbnailLocked(ctx, job.Result)
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventAnalysisCompleted, s.viewLocked())
}

// scheduleThumbnailLocked bumps the derivation generation, marks the
// thumbnail pending and schedules a derivation after the debounce window.
// Must be called with the session lock held.
func (s *Session) scheduleThumbnailLocked() {
	s.generation++
	gen := s.generation
	s.draft.Thumbnail = models.PendingThumbnail(gen)
	s.debounced(func() {
		s.deriveThumbnail(gen)
	})
}

// deriveThumbnail runs one derivation for the given generation. The
// result is discarded if another source edit superseded it while the
// derivation was in flight.
func (s *Session) deriveThumbnail(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	kind := s.draft.ContentKind
	sourceURL := s.draft.Source.URL
	data := s.fileData
	s.mu.Unlock()

	ctx := context.Background()
	var state models.ThumbnailState

	switch {
	case kind.DerivesLocally():
		state = s.deriver.Derive(ctx, interfaces.DeriveInput{
			Kind:       kind,
			Data:       data,
			URL:        sourceURL,
			Generation: gen,
		})
	case sourceURL != "":
		thumbURL, err := s.extractor.ProbeThumbnail(ctx, sourceURL)
		switch {
		case err != nil:
			s.logger.Debug().Err(err).Str("url", sourceURL).Msg("Thumbnail probe failed")
			state = models.FailedThumbnail(gen)
		case thumbURL == "":
			// Absence of a preview is not a failure
			state = models.NoThumbnail()
		default:
			state = models.RemoteURLThumbnail(gen, thumbURL)
		}
	default:
		state = models.NoThumbnail()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug().
			Int64("generation", int64(gen)).
			Int64("current", int64(s.generation)).
			Msg("Discarding stale thumbnail result")
		return
	}

	s.draft.Thumbnail = state
	s.persistLocked(ctx)
	s.publish(ctx, interfaces.EventThumbnailUpdated, s.viewLocked())
}

// applyResultThumbnailLocked adopts a thumbnail URL reported by
// extraction, or re-schedules local derivation now that the kind is
// known. Never downgrades an image the session already has.
func (s *Session) applyResultThumbnailLocked(ctx context.Context, result *models.ExtractionResult) {
	if s.draft.Thumbnail.HasImage() {
		return
	}
	if result != nil && result.ThumbnailURL != "" {
		s.generation++
		s.draft.Thumbnail = models.RemoteURLThumbnail(s.generation, result.ThumbnailURL)
		s.publish(ctx, interfaces.EventThumbnailUpdated, s.viewLocked())
		return
	}
	if s.draft.ContentKind.DerivesLocally() && (len(s.fileData) > 0 || s.draft.Source.URL != "") {
		s.scheduleThumbnailLocked()
	}
}

func (s *Session) clearLocked(ctx context.Context) {
	s.draft.Reset()
	s.inputText = ""
	s.fileData = nil
	s.lastError = nil
	s.jobID = ""
	s.generation++
	if s.config.PersistDrafts {
		if err := s.drafts.DeleteDraft(ctx, s.draft.ID); err != nil {
			s.logger.Warn().Err(err).Str("draft_id", s.draft.ID).Msg("Failed to delete persisted draft")
		}
	}
}

func (s *Session) persistLocked(ctx context.Context) {
	if !s.config.PersistDrafts {
		return
	}
	if err := s.drafts.SaveDraft(ctx, s.draft); err != nil {
		s.logger.Warn().Err(err).Str("draft_id", s.draft.ID).Msg("Failed to persist draft")
	}
}

func (s *Session) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish event")
	}
}

// isURL reports whether the input looks like a web address.
func isURL(input string) bool {
	if strings.ContainsAny(input, " \t\n") {
		return false
	}
	parsed, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// kindFromFilename guesses the content kind from a file extension.
// Extraction refines the guess once it has looked at the bytes.
func kindFromFilename(filename string) models.ContentKind {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return models.KindPDF
	case strings.HasSuffix(lower, ".png"),
		strings.HasSuffix(lower, ".jpg"),
		strings.HasSuffix(lower, ".jpeg"),
		strings.HasSuffix(lower, ".gif"),
		strings.HasSuffix(lower, ".webp"):
		return models.KindImage
	case strings.HasSuffix(lower, ".mp4"),
		strings.HasSuffix(lower, ".mov"),
		strings.HasSuffix(lower, ".webm"),
		strings.HasSuffix(lower, ".mkv"):
		return models.KindVideo
	default:
		return models.KindOther
	}
}
