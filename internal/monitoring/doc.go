/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the DK400
server, tracking HTTP requests, terminal turns, session lifecycle, job
submissions and WebSocket traffic.

# Features

- HTTP request metrics (latency, throughput)
- Terminal turn metrics (duration per action, contained errors)
- Session lifecycle metrics (active, total, sign-on results)
- Job submission counter
- WebSocket connection and message metrics
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.SetSessionsActive(5)
	metrics.IncSessionsTotal()

	// Time terminal turns
	timer := monitoring.NewTimer(metrics, "submit")
	// ... dispatch turn ...
	timer.Stop()

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
