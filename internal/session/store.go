package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/relaybot/internal/chat"
)

// ErrNoSession is returned by Store.Append when the user has no live session.
var ErrNoSession = errors.New("session not found")

const (
	defaultMaxHistory = 20
	defaultIdleTTL    = time.Hour
	minMaxHistory     = 2
)

// Config configures a Store.
type Config struct {
	// MaxHistory caps the number of messages kept per session, including the
	// pinned persona message. Values below 2 are raised to 2.
	MaxHistory int
	// IdleTTL is the inactivity period after which a session is evictable.
	IdleTTL time.Duration
	// SweepEvery is the minimum interval between opportunistic sweeps run on
	// Acquire. Zero sweeps on every access, a negative value disables them.
	SweepEvery time.Duration
	// Persona seeds new sessions as a system message. "{name}" is replaced by
	// the user's display name. Empty means no system message.
	Persona string
	// DefaultBackend is the preferred backend of new sessions.
	DefaultBackend chat.Backend
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type entry struct {
	// mu is the per-user lock; it guards s and closed.
	mu     sync.Mutex
	s      Session
	closed bool

	// Guarded by Store.mu.
	refs     int
	lastSeen time.Time
}

// Store is the process-wide map from user id to Session. It is safe for
// concurrent use.
type Store struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	entries   map[int64]*entry
	lastSweep time.Time
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = defaultMaxHistory
	}
	if cfg.MaxHistory < minMaxHistory {
		cfg.MaxHistory = minMaxHistory
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		cfg:     cfg,
		now:     now,
		entries: make(map[int64]*entry),
	}
}

// Handle is exclusive access to one user's session. It must be released.
type Handle struct {
	st       *Store
	e        *entry
	created  bool
	released bool
}

// Acquire returns exclusive access to the session of userID, creating it if
// absent. The display name (when non-empty) and the activity timestamp are
// refreshed. Callers for the same user block until the previous Handle is
// released; the session cannot be evicted while a Handle is held.
func (st *Store) Acquire(userID int64, displayName string) *Handle {
	for {
		now := st.now()

		st.mu.Lock()
		st.maybeSweepLocked(now)
		e, ok := st.entries[userID]
		created := false
		if !ok {
			e = st.newEntryLocked(userID, displayName, now)
			created = true
		}
		e.refs++
		st.mu.Unlock()

		e.mu.Lock()
		if e.closed {
			// Cleared while we waited; the map no longer points at e.
			e.mu.Unlock()
			st.unpin(e)
			continue
		}
		if displayName != "" {
			e.s.DisplayName = displayName
		}
		e.s.LastActivity = st.now()
		return &Handle{st: st, e: e, created: created}
	}
}

func (st *Store) newEntryLocked(userID int64, displayName string, now time.Time) *entry {
	s := Session{
		ID:           uuid.Must(uuid.NewV7()).String(),
		UserID:       userID,
		DisplayName:  displayName,
		CreatedAt:    now,
		LastActivity: now,
		Preferred:    st.cfg.DefaultBackend,
	}
	if st.cfg.Persona != "" {
		persona := strings.ReplaceAll(st.cfg.Persona, "{name}", displayName)
		s.History = append(s.History, chat.Message{Role: chat.RoleSystem, Content: persona})
	}
	e := &entry{s: s, lastSeen: now}
	st.entries[userID] = e
	return e
}

func (st *Store) unpin(e *entry) {
	st.mu.Lock()
	e.refs--
	st.mu.Unlock()
}

// pinExisting pins the entry of userID without creating one.
func (st *Store) pinExisting(userID int64) (*entry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[userID]
	if !ok {
		return nil, false
	}
	e.refs++
	return e, true
}

// Created reports whether this Acquire created the session.
func (h *Handle) Created() bool { return h.created }

// Snapshot returns a copy of the session.
func (h *Handle) Snapshot() Session { return h.e.s.clone() }

// History returns a copy of the conversation history.
func (h *Handle) History() []chat.Message { return h.Snapshot().History }

// Append adds a message to the history, applying the length bound. User turns
// also bump the message counter.
func (h *Handle) Append(role chat.Role, content string) {
	h.e.s.appendBounded(chat.Message{Role: role, Content: content}, h.st.cfg.MaxHistory)
	if role == chat.RoleUser {
		h.e.s.MessageCount++
	}
	h.e.s.LastActivity = h.st.now()
}

// SetPreferred changes the preferred backend.
func (h *Handle) SetPreferred(b chat.Backend) {
	h.e.s.Preferred = b
}

// Release ends the critical section. It is safe to call more than once.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	last := h.e.s.LastActivity
	h.e.mu.Unlock()

	h.st.mu.Lock()
	h.e.refs--
	h.e.lastSeen = last
	h.st.mu.Unlock()
}

// GetOrCreate returns the session of userID, creating it if absent.
func (st *Store) GetOrCreate(userID int64, displayName string) Session {
	h := st.Acquire(userID, displayName)
	defer h.Release()
	return h.Snapshot()
}

// Get returns the session of userID without refreshing its activity.
func (st *Store) Get(userID int64) (Session, bool) {
	e, ok := st.pinExisting(userID)
	if !ok {
		return Session{}, false
	}
	e.mu.Lock()
	closed := e.closed
	s := e.s.clone()
	e.mu.Unlock()
	st.unpin(e)
	if closed {
		return Session{}, false
	}
	return s, true
}

// Append adds a message to an existing session. It returns ErrNoSession when
// the user has no live session; it never creates one.
func (st *Store) Append(userID int64, role chat.Role, content string) error {
	e, ok := st.pinExisting(userID)
	if !ok {
		return ErrNoSession
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		st.unpin(e)
		return ErrNoSession
	}
	h := &Handle{st: st, e: e}
	h.Append(role, content)
	h.Release()
	return nil
}

// SetPreferred sets the preferred backend of userID, creating the session if
// needed, and returns the updated snapshot.
func (st *Store) SetPreferred(userID int64, displayName string, b chat.Backend) Session {
	h := st.Acquire(userID, displayName)
	defer h.Release()
	h.SetPreferred(b)
	return h.Snapshot()
}

// Clear removes the session of userID. It reports false, the "nothing to
// clear" outcome, when no session existed.
func (st *Store) Clear(userID int64) bool {
	e, ok := st.pinExisting(userID)
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st.mu.Lock()
	e.refs--
	if e.closed {
		st.mu.Unlock()
		return false
	}
	if st.entries[userID] == e {
		delete(st.entries, userID)
	}
	st.mu.Unlock()

	e.closed = true
	return true
}

// SweepExpired evicts every session idle for longer than the TTL at now and
// returns how many were removed. Sessions held by a Handle are skipped.
func (st *Store) SweepExpired(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked(now)
}

func (st *Store) maybeSweepLocked(now time.Time) {
	if st.cfg.SweepEvery < 0 {
		return
	}
	if now.Sub(st.lastSweep) < st.cfg.SweepEvery {
		return
	}
	st.sweepLocked(now)
}

func (st *Store) sweepLocked(now time.Time) int {
	st.lastSweep = now
	removed := 0
	for id, e := range st.entries {
		if e.refs > 0 {
			continue
		}
		if now.Sub(e.lastSeen) <= st.cfg.IdleTTL {
			continue
		}
		// refs == 0 means nobody holds or waits on e.mu.
		e.closed = true
		delete(st.entries, id)
		removed++
	}
	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// IdleTTL returns the configured idle TTL.
func (st *Store) IdleTTL() time.Duration { return st.cfg.IdleTTL }
