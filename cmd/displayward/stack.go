package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/displayward/displayward/internal/authstore"
	"github.com/displayward/displayward/internal/compositor"
	"github.com/displayward/displayward/internal/config"
	"github.com/displayward/displayward/internal/daemon"
	"github.com/displayward/displayward/internal/engine"
)

// buildEngine wires config -> logger -> adapter -> store -> engine. The
// backend selection happens exactly once here and is never re-evaluated.
func buildEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	backend, err := compositor.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	adapter, err := compositor.New(backend, logger)
	if err != nil {
		return nil, nil, err
	}

	storePath := cfg.StorePath
	if storePath == "" {
		storePath, err = authstore.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
	}
	store := authstore.Open(storePath, logger)

	eng := engine.New(engine.Config{
		ApplyStoredMode: cfg.ApplyStoredMode,
		Logger:          logger,
	}, adapter, store)
	return eng, cfg, nil
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayward daemon")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the reconcile loop in the foreground. Newly detected displays")
		fmt.Fprintln(os.Stderr, "stay disabled until authorized; at least one display always stays")
		fmt.Fprintln(os.Stderr, "active.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	eng, cfg, err := buildEngine()
	if err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}
	log.Printf("Configuration loaded (backend: %s, interval: %s)", cfg.Backend, cfg.PollInterval())

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	reconciler := daemon.New(daemon.Config{
		Interval: cfg.PollInterval(),
		Logger:   logger,
	}, eng)

	// Immediate pass on startup so displays attached while the daemon was
	// down are denied before the first tick.
	reconciler.ReconcileNow()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %v, shutting down...", sig)
		cancel()
	}()

	log.Println("displayward daemon started")
	reconciler.Run(ctx)
	return 0
}
