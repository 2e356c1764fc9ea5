// Package session implements the in-memory, per-user conversation store.
//
// A Store owns one Session per user id. Mutations of a single session happen
// inside a per-user critical section (see Store.Acquire); the map of sessions
// is guarded separately so that lookups for different users never contend on
// the same session lock. Idle sessions are evicted by SweepExpired, which also
// runs opportunistically on store access.
package session

import (
	"slices"
	"time"

	"github.com/edgard/relaybot/internal/chat"
)

// Session is a snapshot of one user's conversation state.
type Session struct {
	ID           string
	UserID       int64
	DisplayName  string
	History      []chat.Message
	CreatedAt    time.Time
	LastActivity time.Time
	MessageCount int
	Preferred    chat.Backend
}

func (s *Session) clone() Session {
	c := *s
	c.History = slices.Clone(s.History)
	return c
}

// appendBounded appends m and trims the history down to maxLen entries,
// dropping the oldest messages first. A system message in slot 0 is pinned.
func (s *Session) appendBounded(m chat.Message, maxLen int) {
	s.History = append(s.History, m)
	if len(s.History) <= maxLen {
		return
	}

	start := 0
	if s.History[0].Role == chat.RoleSystem {
		start = 1
	}
	excess := len(s.History) - maxLen
	s.History = slices.Delete(s.History, start, start+excess)
}
