// Package ws is the WebSocket protocol adapter.
//
// Each connection gets a session keyed by a generated connection id. The
// read loop decodes inbound action frames, dispatches them through the
// engine and writes the outcome back as screen, message, bell and exit
// frames. Closing the socket removes the session.
package ws
