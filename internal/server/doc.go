// Package server assembles the DK400 service: configuration, logging,
// the screen catalog, the collaborators, the dispatch engine and the
// HTTP/WebSocket surface.
//
// Routes:
//   - GET /        service identification
//   - GET /health  liveness with session and history counts
//   - GET /metrics Prometheus metrics (when instrumented)
//   - GET /sessions  active interactive jobs
//   - GET /jobs      broker job list
//   - GET /ws        the terminal WebSocket
package server
