package session

import (
	"sync/atomic"
	"time"

	"github.com/dk400/dk400/internal/pagination"
)

// Identity describes who is signed on to a session.
type Identity struct {
	User            string
	Class           string
	Authenticated   bool
	PasswordExpired bool
}

// Anonymous returns the identity of a connection before sign-on.
func Anonymous() Identity {
	return Identity{User: "QUSER"}
}

// Level classifies a pending message.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Message is a one-shot message shown on the next render.
type Message struct {
	Text  string
	Level string
}

// Session is one connection's interaction state. The exported fields are
// owned by the connection's own turn; other connections see only the
// published Snapshot.
type Session struct {
	ID            string
	JobName       string
	Identity      Identity
	CurrentScreen string
	ActiveField   int
	SignedOnAt    time.Time
	LastActivity  time.Time

	scratch map[string]string
	offsets map[string]int
	pending *Message
	snap    atomic.Pointer[Snapshot]
}

// Snapshot is the immutable cross-connection view of a session. Work-with
// displays and the REST surface read snapshots, never the live session.
type Snapshot struct {
	ID           string
	JobName      string
	User         string
	Screen       string
	SignedOnAt   time.Time
	LastActivity time.Time
}

// New creates a fresh session for a connection. Callers normally use
// Registry.Create, which also assigns the job name.
func New(id string, identity Identity) *Session {
	now := time.Now()
	s := &Session{
		ID:           id,
		Identity:     identity,
		SignedOnAt:   now,
		LastActivity: now,
		scratch:      make(map[string]string),
		offsets:      make(map[string]int),
	}
	s.Publish()
	return s
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// Publish refreshes the session's snapshot from its mutable fields. Only
// the owning connection's turn calls it, at each point where the fields
// have settled.
func (s *Session) Publish() {
	s.snap.Store(&Snapshot{
		ID:           s.ID,
		JobName:      s.JobName,
		User:         s.Identity.User,
		Screen:       s.CurrentScreen,
		SignedOnAt:   s.SignedOnAt,
		LastActivity: s.LastActivity,
	})
}

// Snapshot returns the last published view. Safe from any goroutine.
func (s *Session) Snapshot() Snapshot {
	return *s.snap.Load()
}

// Scratch reads a value from the per-session scratch store. Absent keys
// read as the empty string.
func (s *Session) Scratch(key string) string {
	return s.scratch[key]
}

// SetScratch writes a value into the scratch store.
func (s *Session) SetScratch(key, value string) {
	s.scratch[key] = value
}

// ClearScratch drops every scratch key with the given prefix. Wizard flows
// use a common prefix so a cancel can discard partial state.
func (s *Session) ClearScratch(prefix string) {
	for k := range s.scratch {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(s.scratch, k)
		}
	}
}

// Offset returns the pagination offset for a screen, zero if unvisited.
// Offsets are never stored negative; clamping to the list end happens at
// read time in the pagination package.
func (s *Session) Offset(screenID string) int {
	return s.offsets[screenID]
}

// SetOffset stores a pagination offset, flooring at zero.
func (s *Session) SetOffset(screenID string, offset int) {
	if offset < 0 {
		offset = 0
	}
	s.offsets[screenID] = offset
}

// Roll advances the stored offset for a screen one page in the given
// direction and returns the new offset.
func (s *Session) Roll(screenID string, size, total int, dir pagination.Direction) int {
	next := pagination.Advance(s.offsets[screenID], size, total, dir)
	s.offsets[screenID] = next
	return next
}

// SetMessage queues a one-shot message for the next render.
func (s *Session) SetMessage(text, level string) {
	s.pending = &Message{Text: text, Level: level}
}

// TakeMessage returns the pending message and clears it.
func (s *Session) TakeMessage() (Message, bool) {
	if s.pending == nil {
		return Message{}, false
	}
	m := *s.pending
	s.pending = nil
	return m, true
}
