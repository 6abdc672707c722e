// Package history keeps the system history log: a bounded, in-memory ring
// of timestamped entries that the log display screen pages through.
package history

import (
	"sync"
	"time"

	"github.com/dk400/dk400/internal/collab"
)

// DefaultCapacity bounds the ring when no capacity is configured.
const DefaultCapacity = 512

// Log is a fixed-capacity history ring. It implements collab.History.
// Once full, the oldest entry is overwritten.
type Log struct {
	mu      sync.Mutex
	entries []collab.Entry
	next    int
	full    bool
	clock   func() time.Time
}

// New creates a history log holding at most capacity entries.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries: make([]collab.Entry, capacity),
		clock:   time.Now,
	}
}

// Record appends an entry, evicting the oldest when the ring is full.
func (l *Log) Record(severity, source, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = collab.Entry{
		Time:     l.clock(),
		Severity: severity,
		Source:   source,
		Message:  message,
	}
	l.next++
	if l.next == len(l.entries) {
		l.next = 0
		l.full = true
	}
}

// Entries returns all recorded entries, newest first.
func (l *Log) Entries() []collab.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	if l.full {
		n = len(l.entries)
	}

	out := make([]collab.Entry, 0, n)
	// Walk backwards from the most recent write.
	for i := 0; i < n; i++ {
		idx := l.next - 1 - i
		if idx < 0 {
			idx += len(l.entries)
		}
		out = append(out, l.entries[idx])
	}
	return out
}

// Len reports how many entries are held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.entries)
	}
	return l.next
}
