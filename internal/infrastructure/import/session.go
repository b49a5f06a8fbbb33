package csvimport

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntityType names the kind of records a file carries.
type EntityType string

// EntityStudents is the student roster upload.
const EntityStudents EntityType = "students"

// ImportState tracks an upload through validation and import.
type ImportState string

const (
	StateCreated    ImportState = "created"
	StateValidating ImportState = "validating"
	StateValidated  ImportState = "validated"
	StateImporting  ImportState = "importing"
	StateCompleted  ImportState = "completed"
	StateFailed     ImportState = "failed"
	StateCancelled  ImportState = "cancelled"
)

// ImportSession is the record of one uploaded file, from receipt
// through validation to import. Sessions are short-lived, they exist
// so the uploader can review validation results and see history.
type ImportSession struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	EntityType  EntityType       `json:"entity_type"`
	FileName    string           `json:"file_name"`
	FileSize    int64            `json:"file_size"`
	State       ImportState      `json:"state"`
	TotalRows   int              `json:"total_rows"`
	ValidRows   int              `json:"valid_rows"`
	ErrorRows   int              `json:"error_rows"`
	Errors      []RowError       `json:"errors,omitempty"`
	Preview     []map[string]any `json:"preview,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewImportSession opens a session for a freshly uploaded file.
func NewImportSession(userID uuid.UUID, entityType EntityType, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:         uuid.New(),
		UserID:     userID,
		EntityType: entityType,
		FileName:   fileName,
		FileSize:   fileSize,
		State:      StateCreated,
		Errors:     make([]RowError, 0),
		Preview:    make([]map[string]any, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// UpdateState moves the session to a new state, stamping CompletedAt
// when the state is terminal.
func (s *ImportSession) UpdateState(state ImportState) {
	now := time.Now()
	s.State = state
	s.UpdatedAt = now
	switch state {
	case StateCompleted, StateFailed, StateCancelled:
		s.CompletedAt = &now
	}
}

// RecordValidation copies a validation outcome onto the session.
func (s *ImportSession) RecordValidation(result *ValidationResult) {
	s.TotalRows = result.TotalRows
	s.ValidRows = result.ValidRows
	s.ErrorRows = result.ErrorRows
	s.Errors = result.Errors
	s.Preview = result.Preview
	s.UpdatedAt = time.Now()
}

// SessionStore keeps import sessions between the validate and import
// requests of the two-step upload flow.
type SessionStore interface {
	Save(session *ImportSession) error
	Get(id uuid.UUID) (*ImportSession, error)
	GetByUser(userID uuid.UUID, limit int) ([]*ImportSession, error)
	Delete(id uuid.UUID) error
}

// InMemorySessionStore holds sessions in process memory with a TTL.
// Good for a single instance, swap for a shared store when the API
// runs behind a load balancer.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*ImportSession
	ttl      time.Duration
	done     chan struct{}
}

// NewInMemorySessionStore builds a store whose sessions expire after
// ttl, with a background sweep reclaiming the memory.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	s := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *InMemorySessionStore) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.done:
			return
		}
	}
}

// Stop ends the background sweep.
func (s *InMemorySessionStore) Stop() {
	close(s.done)
}

// Save stores or replaces a session.
func (s *InMemorySessionStore) Save(session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get returns a live session, or nil when unknown or expired.
func (s *InMemorySessionStore) Get(id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		return nil, nil
	}
	return session, nil
}

// GetByUser returns up to limit live sessions opened by the user.
func (s *InMemorySessionStore) GetByUser(userID uuid.UUID, limit int) ([]*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ImportSession
	for _, session := range s.sessions {
		if session.UserID != userID || s.expired(session) {
			continue
		}
		out = append(out, session)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Delete removes a session.
func (s *InMemorySessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup drops every expired session.
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
		}
	}
}

func (s *InMemorySessionStore) expired(session *ImportSession) bool {
	return time.Since(session.CreatedAt) > s.ttl
}
