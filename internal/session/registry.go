package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateSession is returned when a connection id already has a
// session. The connection is rejected rather than stealing the entry.
var ErrDuplicateSession = errors.New("session already exists for connection")

// Registry is the process-wide map from connection id to session. It is the
// only shared mutable state between connections and supports concurrent
// insert, lookup and remove. Cross-connection reads go through Snapshots;
// the live *Session handed out by Create and Get belongs to the owning
// connection alone.
type Registry struct {
	sessions sync.Map

	mu      sync.Mutex
	used    map[int]bool
	jobNums map[string]int
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		used:    make(map[int]bool),
		jobNums: make(map[string]int),
	}
}

// Create allocates a session for a connection and assigns it an
// interactive job name (QPADEV####, AS/400 style). Numbers are the lowest
// free, so a device name is reused once its connection ends.
func (r *Registry) Create(connID string, identity Identity) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	num := 1
	for r.used[num] {
		num++
	}

	s := New(connID, identity)
	s.JobName = fmt.Sprintf("QPADEV%04d", num)
	s.Publish()

	if _, loaded := r.sessions.LoadOrStore(connID, s); loaded {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSession, connID)
	}
	r.used[num] = true
	r.jobNums[connID] = num
	return s, nil
}

// Get retrieves the session for a connection.
func (r *Registry) Get(connID string) (*Session, bool) {
	val, ok := r.sessions.Load(connID)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Remove drops the session for a connection and frees its device number.
// Removing an absent id is a no-op.
func (r *Registry) Remove(connID string) {
	r.sessions.Delete(connID)

	r.mu.Lock()
	if num, ok := r.jobNums[connID]; ok {
		delete(r.used, num)
		delete(r.jobNums, connID)
	}
	r.mu.Unlock()
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	var n int
	r.sessions.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Snapshots returns the published view of every live session, sorted by
// job name. The walk is loosely consistent; entries added or removed
// during it may or may not be seen.
func (r *Registry) Snapshots() []Snapshot {
	var out []Snapshot
	r.sessions.Range(func(_, value interface{}) bool {
		out = append(out, value.(*Session).Snapshot())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].JobName < out[j].JobName })
	return out
}
