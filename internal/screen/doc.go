// Package screen defines the contract between the engine and the
// open-ended set of business screens.
//
// A screen is registered once at startup as a Definition: an id, a
// renderer that produces a Frame from session state, a submit handler that
// consumes posted field values, and an optional table of screen-specific
// function-key handlers. The Registry is populated before any session is
// created and never mutated while serving traffic.
//
// Key Components:
//   - Definition: {id, render, submit, keys} capability set
//   - Registry: process-wide id -> Definition lookup
//   - Frame: the full-screen render unit sent to a client
//   - Directive: what a handler wants next (render, stay, end)
//   - FieldMap: posted field values with empty-string defaulting
//
// Handlers never see engine internals; their whole world is the Ctx they
// are called with.
package screen
