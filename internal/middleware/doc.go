// Package middleware provides HTTP middleware for the DK400 server.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for the terminal front end
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - Recovery: Panic recovery with graceful error responses (via Gin)
//
// Rate Limiting:
//   - Per-IP tracking with automatic cleanup of idle clients
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
