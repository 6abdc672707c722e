// Package session holds per-connection interaction state and the
// process-wide registry that maps connection ids to sessions.
//
// A Session carries everything one terminal needs between turns: identity,
// the current screen id, a scratch key/value store for multi-step flows,
// per-screen pagination offsets, a pending one-shot message, and the active
// field index. A session is only ever touched by its own connection's
// worker, so its fields carry no locking; the Registry is the single piece
// of shared mutable state and supports concurrent access. Other
// connections observe a session only through the immutable Snapshot its
// owner publishes at the end of each turn (Registry.Snapshots).
//
// Example Usage:
//
//	reg := session.NewRegistry()
//	s, err := reg.Create(connID, session.Anonymous())
//	if err != nil {
//	    // connection id already has a session
//	}
//	defer reg.Remove(connID)
package session
