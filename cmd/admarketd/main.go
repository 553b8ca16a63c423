// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adxyz/admarket/pkg/analytics"
	"github.com/adxyz/admarket/pkg/escrow"
	"github.com/adxyz/admarket/pkg/event"
	"github.com/adxyz/admarket/pkg/ledger"
	"github.com/adxyz/admarket/pkg/log"
	"github.com/adxyz/admarket/pkg/market"
	"github.com/adxyz/admarket/pkg/metric"
	"github.com/adxyz/admarket/pkg/storage"
)

var (
	port     = flag.Int("port", 8080, "HTTP port")
	dataDir  = flag.String("data-dir", "/tmp/admarketd", "Data directory")
	dbType   = flag.String("db", "badger", "Database backend: memory, badger")
	logLevel = flag.String("log-level", "info", "Log level")

	// Version info
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	flag.Parse()

	fmt.Printf("Ad Marketplace Daemon (admarketd) %s (commit: %s)\n", Version, GitCommit)

	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	store, err := storage.New(*dbType, *dataDir)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	metrics, err := metric.NewMetrics()
	if err != nil {
		logger.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	bus := event.NewBus(logger)
	accounts := ledger.New(logger)
	registry := market.NewRegistry(store, bus, market.SystemClock(), metrics, logger)
	vault := escrow.NewVault(store, accounts, registry, bus, metrics, logger)
	tracker := analytics.NewTracker()

	// Feed the tracker from the event stream.
	events, cancel := bus.Subscribe(256)
	defer cancel()
	go func() {
		for ev := range events {
			tracker.Consume(ev)
		}
	}()

	srv := newServer(registry, vault, accounts, bus, tracker, metrics, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: srv.router(),
	}

	go func() {
		logger.Info("http server listening", "port", *port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
