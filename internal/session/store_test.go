package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edgard/relaybot/internal/chat"
)

// fakeClock is a manually advanced clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(clock *fakeClock, maxHistory int) *Store {
	return NewStore(Config{
		MaxHistory: maxHistory,
		IdleTTL:    time.Hour,
		SweepEvery: -1,
		Persona:    "You are talking to {name}.",
		Now:        clock.Now,
	})
}

func TestStore_GetOrCreateSeedsPersona(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)
	s := st.GetOrCreate(7, "Asha")

	if s.UserID != 7 || s.DisplayName != "Asha" {
		t.Fatalf("unexpected identity: %+v", s)
	}
	if len(s.History) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(s.History))
	}
	if s.History[0].Role != chat.RoleSystem || s.History[0].Content != "You are talking to Asha." {
		t.Errorf("unexpected persona message: %+v", s.History[0])
	}
	if s.Preferred != chat.Primary {
		t.Errorf("expected primary preference, got %v", s.Preferred)
	}
}

func TestStore_DisplayNameLastWriteWins(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)
	first := st.GetOrCreate(1, "Asha")
	second := st.GetOrCreate(1, "Asha K")

	if first.ID != second.ID {
		t.Fatalf("expected the same session, got %s and %s", first.ID, second.ID)
	}
	if second.DisplayName != "Asha K" {
		t.Errorf("expected refreshed display name, got %q", second.DisplayName)
	}
}

func TestStore_BoundedHistory(t *testing.T) {
	t.Parallel()

	const maxHistory = 5
	st := newTestStore(newFakeClock(), maxHistory)
	st.GetOrCreate(1, "Asha")

	for i := range 12 {
		if err := st.Append(1, chat.RoleUser, fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		s, _ := st.Get(1)
		if len(s.History) > maxHistory {
			t.Fatalf("history length %d exceeds bound %d after append %d", len(s.History), maxHistory, i)
		}
	}

	s, _ := st.Get(1)
	if s.History[0].Role != chat.RoleSystem {
		t.Fatalf("expected pinned system message in slot 0, got %+v", s.History[0])
	}
	// Slots 1..4 hold the four most recent turns, oldest first.
	for i, want := range []string{"msg-8", "msg-9", "msg-10", "msg-11"} {
		if got := s.History[i+1].Content; got != want {
			t.Errorf("History[%d] = %q, want %q", i+1, got, want)
		}
	}
	if s.MessageCount != 12 {
		t.Errorf("MessageCount = %d, want 12", s.MessageCount)
	}
}

func TestStore_BoundedHistoryWithoutPersona(t *testing.T) {
	t.Parallel()

	st := NewStore(Config{MaxHistory: 3, SweepEvery: -1})
	st.GetOrCreate(1, "Asha")
	for i := range 4 {
		_ = st.Append(1, chat.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	s, _ := st.Get(1)
	if len(s.History) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(s.History))
	}
	if s.History[0].Content != "msg-1" {
		t.Errorf("expected oldest message evicted first, got %q", s.History[0].Content)
	}
}

func TestStore_AppendMissingSession(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)
	err := st.Append(99, chat.RoleUser, "hello")
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if st.Len() != 0 {
		t.Errorf("Append must not create a session")
	}
}

func TestStore_NoDuplicateSessions(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)

	const callers = 32
	ids := make([]string, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ids[i] = st.GetOrCreate(42, "Asha").ID
		}()
	}
	close(start)
	wg.Wait()

	for i, id := range ids {
		if id != ids[0] {
			t.Fatalf("caller %d saw session %s, caller 0 saw %s", i, id, ids[0])
		}
	}
	if st.Len() != 1 {
		t.Errorf("expected exactly one session, got %d", st.Len())
	}
}

func TestStore_ConcurrentAppendsAreNotLost(t *testing.T) {
	t.Parallel()

	const writers = 50
	st := newTestStore(newFakeClock(), writers+1)

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := st.Acquire(5, "Asha")
			defer h.Release()
			h.Append(chat.RoleUser, fmt.Sprintf("turn-%d", i))
		}()
	}
	wg.Wait()

	s, ok := st.Get(5)
	if !ok {
		t.Fatal("session missing")
	}
	if s.MessageCount != writers {
		t.Errorf("MessageCount = %d, want %d", s.MessageCount, writers)
	}
	if len(s.History) != writers+1 {
		t.Errorf("history length = %d, want %d", len(s.History), writers+1)
	}
}

func TestStore_SweepExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := newTestStore(clock, 10)
	t0 := clock.Now()

	st.GetOrCreate(1, "stale")
	clock.Advance(time.Second)
	st.GetOrCreate(2, "fresh")

	// Session 2 was touched one second after session 1. At t0+TTL+1s session 1
	// has been idle longer than the TTL, session 2 exactly the TTL.
	removed := st.SweepExpired(t0.Add(time.Hour + time.Second))
	if removed != 1 {
		t.Fatalf("expected 1 eviction, got %d", removed)
	}
	if _, ok := st.Get(1); ok {
		t.Errorf("expected idle session to be evicted")
	}
	if _, ok := st.Get(2); !ok {
		t.Errorf("expected session at the TTL boundary to survive")
	}
}

func TestStore_SweepSkipsHeldSessions(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := newTestStore(clock, 10)

	h := st.Acquire(1, "Asha")
	if removed := st.SweepExpired(clock.Now().Add(24 * time.Hour)); removed != 0 {
		t.Fatalf("held session must not be evicted, removed %d", removed)
	}
	h.Append(chat.RoleUser, "still here")
	h.Release()

	s, ok := st.Get(1)
	if !ok || len(s.History) != 2 {
		t.Fatalf("expected session with 2 messages after release, got ok=%v %+v", ok, s.History)
	}
}

func TestStore_OpportunisticSweepOnAcquire(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := NewStore(Config{IdleTTL: time.Minute, SweepEvery: 0, Now: clock.Now})

	st.GetOrCreate(1, "old")
	clock.Advance(2 * time.Minute)
	st.GetOrCreate(2, "new")

	if _, ok := st.Get(1); ok {
		t.Errorf("expected idle session to be swept on access")
	}
	if st.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", st.Len())
	}
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)
	before := st.GetOrCreate(1, "Asha")
	if err := st.Append(1, chat.RoleUser, "remember me"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if !st.Clear(1) {
		t.Fatal("expected Clear to remove the existing session")
	}
	if st.Clear(1) {
		t.Fatal("expected nothing to clear on the second call")
	}

	after := st.GetOrCreate(1, "Asha")
	if after.ID == before.ID {
		t.Errorf("expected a fresh session after clear")
	}
	if len(after.History) != 1 || after.History[0].Role != chat.RoleSystem {
		t.Errorf("expected only the persona message, got %+v", after.History)
	}
	if after.MessageCount != 0 {
		t.Errorf("expected reset counter, got %d", after.MessageCount)
	}
}

func TestStore_ClearWhileWaiting(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)
	h := st.Acquire(1, "Asha")
	oldID := h.Snapshot().ID

	cleared := make(chan bool)
	go func() { cleared <- st.Clear(1) }()

	h.Append(chat.RoleUser, "hi")
	h.Release()

	if !<-cleared {
		t.Fatal("expected Clear to succeed once the handle was released")
	}

	next := st.GetOrCreate(1, "Asha")
	if next.ID == oldID {
		t.Errorf("expected a new session after clear")
	}
}

func TestStore_SetPreferred(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)
	s := st.SetPreferred(3, "Asha", chat.Secondary)
	if s.Preferred != chat.Secondary {
		t.Fatalf("expected secondary, got %v", s.Preferred)
	}
	got, _ := st.Get(3)
	if got.Preferred != chat.Secondary {
		t.Errorf("preference not persisted: %v", got.Preferred)
	}
}

func TestHandle_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(newFakeClock(), 10)
	h := st.Acquire(1, "Asha")
	h.Release()
	h.Release()

	// A second Acquire would deadlock if the lock were still held.
	h2 := st.Acquire(1, "Asha")
	defer h2.Release()
	if h2.Created() {
		t.Errorf("expected the existing session to be reused")
	}
}
