// Package engine implements the turn-dispatch state machine underneath the
// screen protocol.
//
// States are the registered screen ids plus one implicit terminal state.
// For each inbound action (init, submit, function_key, roll) the engine
// resolves the session's current screen definition, invokes the right
// handler, applies the resulting directive and renders the next frame.
//
// Every turn is contained: handler errors and panics degrade to an
// error-level message frame, an unresolvable screen renders a generic
// fallback frame, and absent posted fields default to empty strings. No
// screen's bug may terminate the connection or corrupt the session.
//
// The engine is safe for concurrent use across connections; actions for a
// single connection must be dispatched sequentially by the caller (the
// protocol adapter runs one read loop per connection, which guarantees
// this).
package engine
