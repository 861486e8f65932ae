package scan

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State names one phase of a scanner session.
type State string

const (
	StateIdle     State = "idle"
	StateScanning State = "scanning"
	StateDecoded  State = "decoded"
	StateError    State = "error"
)

var (
	ErrSessionNotFound = errors.New("scan session not found")
	ErrSessionClosed   = errors.New("scan session already finished")
)

// Session is one scanner lifecycle for one user. It starts in Scanning
// (the capture slot is held) and ends in exactly one of Decoded, Error, or
// Idle (cancelled); the slot is released on that single exit transition.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	State     State     `json:"state"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`

	released bool
}

func (s *Session) active() bool {
	return s.State == StateScanning
}

// Store keeps live sessions in memory. Finished sessions stick around
// until the janitor sweeps them so clients can poll the terminal state.
type Store struct {
	verifier *Verifier
	ttl      time.Duration
	now      func() time.Time
	onClose  func(s *Session)

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a session store. onClose is invoked exactly once per
// session when its capture slot is released; nil is allowed.
func NewStore(verifier *Verifier, ttl time.Duration, onClose func(s *Session)) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Store{
		verifier: verifier,
		ttl:      ttl,
		now:      time.Now,
		onClose:  onClose,
		sessions: make(map[string]*Session),
	}
}

// Start opens a new scanning session for the user.
func (st *Store) Start(userID string) *Session {
	now := st.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     StateScanning,
		StartedAt: now,
		ExpiresAt: now.Add(st.ttl),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns a copy of the session, if it exists.
func (st *Store) Get(id string) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *s, nil
}

// Submit delivers a decoded payload to an active session. A matching
// payload moves the session to Decoded; anything else moves it to Error.
// Either way the session is finished and the capture slot released; a
// second submit fails with ErrSessionClosed and changes nothing.
func (st *Store) Submit(id, payload string) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !s.active() {
		return *s, ErrSessionClosed
	}

	var verr error
	if verr = st.verifier.Verify(payload); verr != nil {
		s.State = StateError
	} else {
		s.State = StateDecoded
	}
	st.release(s)
	return *s, verr
}

// Cancel aborts an active session, returning it to Idle. Cancelling a
// finished session is a no-op.
func (st *Store) Cancel(id string) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.active() {
		s.State = StateIdle
		st.release(s)
	}
	return *s, nil
}

// Sweep releases sessions past their deadline and drops finished ones.
// Returns how many sessions were expired.
func (st *Store) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	expired := 0
	for id, s := range st.sessions {
		if s.active() && now.After(s.ExpiresAt) {
			s.State = StateError
			st.release(s)
			expired++
		}
		if !s.active() && now.After(s.ExpiresAt.Add(st.ttl)) {
			delete(st.sessions, id)
		}
	}
	return expired
}

// Run sweeps expired sessions until done is closed.
func (st *Store) Run(done <-chan struct{}) {
	ticker := time.NewTicker(st.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// release must be called with the lock held and only on a transition out
// of Scanning, which the state guard in each caller ensures.
func (st *Store) release(s *Session) {
	if s.released {
		return
	}
	s.released = true
	if st.onClose != nil {
		st.onClose(s)
	}
}
