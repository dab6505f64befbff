package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Deps bundles everything a session needs. The manager owns one copy and
// hands it to every session it creates.
type Deps struct {
	Extractor interfaces.ExtractionService
	Uploader  interfaces.UploadService
	Deriver   interfaces.ThumbnailDeriver
	Poller    interfaces.JobPoller
	Submitter interfaces.SubmissionCoordinator
	Drafts    interfaces.DraftStorage
	Events    interfaces.EventService
	Config    common.CaptureConfig
	Logger    arbor.ILogger
}

// Manager tracks live capture sessions by draft ID. Each session owns
// one draft; completed background jobs seed fresh sessions here.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// jobSessions remembers which session a completed job already seeded,
	// so repeated refreshes of a finished job reuse it instead of piling
	// up duplicate sessions.
	jobSessions map[string]string

	deps   Deps
	logger arbor.ILogger
}

// NewManager creates a new session manager
func NewManager(deps Deps) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		jobSessions: make(map[string]string),
		deps:        deps,
		logger:      deps.Logger,
	}
}

// Create starts a new empty capture session.
func (m *Manager) Create() *Session {
	session := newSession(m.deps)
	id := session.ID()

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	m.logger.Debug().Str("session_id", id).Msg("Capture session created")
	return session
}

// Get returns the session for the given draft ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no session for draft %s", id)
	}
	return session, nil
}

// List returns snapshots of all live sessions.
func (m *Manager) List() []View {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	views := make([]View, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, s.Snapshot())
	}
	return views
}

// Remove drops a session from the manager. The persisted draft, if any,
// is the session's own concern.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	for jobID, sessionID := range m.jobSessions {
		if sessionID == id {
			delete(m.jobSessions, jobID)
		}
	}
	m.mu.Unlock()
}

// SessionFromJob returns the session seeded from a completed extraction
// job, creating and pre-populating it on first call. Terminal job
// statuses are sticky, so repeated refreshes hit this path again; the
// job seeds at most one live session.
func (m *Manager) SessionFromJob(ctx context.Context, job *models.AsyncExtractionJob) (*Session, error) {
	if job.Status != models.JobCompleted {
		return nil, fmt.Errorf("job %s is %s, not completed", job.ID, job.Status)
	}
	if job.Result == nil {
		return nil, fmt.Errorf("job %s completed without a result", job.ID)
	}

	m.mu.Lock()
	if sessionID, ok := m.jobSessions[job.ID]; ok {
		if existing, ok := m.sessions[sessionID]; ok {
			m.mu.Unlock()
			return existing, nil
		}
		// The seeded session was removed; seed a fresh one
		delete(m.jobSessions, job.ID)
	}
	session := newSession(m.deps)
	id := session.ID()
	m.sessions[id] = session
	m.jobSessions[job.ID] = id
	m.mu.Unlock()

	session.seedFromJob(ctx, job)

	m.logger.Info().
		Str("session_id", id).
		Str("job_id", job.ID).
		Msg("Session seeded from completed job")

	return session, nil
}
