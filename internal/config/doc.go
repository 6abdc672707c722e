// Package config provides 12-factor configuration management for the DK400 server.
//
// Configuration is loaded from environment variables with sensible defaults.
// A TOML file named by DK400_CONFIG overlays the environment for deployments
// that prefer config files.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown timeout)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Broker: Job runner endpoint and timing
//   - Catalog: Screen catalog file override
//   - History: History log capacity
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - RUNNER_URL, RUNNER_TIMEOUT, JOB_EXECUTION_TIME
//   - CATALOG_PATH, HISTORY_CAPACITY, DK400_CONFIG
package config
