package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dk400/dk400/internal/config"
	"github.com/dk400/dk400/internal/logging"
	"github.com/dk400/dk400/internal/monitoring"
	"github.com/dk400/dk400/internal/server"
)

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	catalogPath := flag.String("catalog", "", "Screen catalog file (overrides CATALOG_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	metrics := monitoring.NewMetrics()

	srv, err := server.New(cfg, log, metrics)
	if err != nil {
		log.Fatal("failed to assemble server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("dk400 starting",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	if err := srv.Run(ctx); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("dk400 stopped")
}
