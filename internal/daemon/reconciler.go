// Package daemon runs the poll/reconcile loop around the engine.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/displayward/displayward/internal/engine"
)

// Config holds configuration for the reconciler loop.
type Config struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically runs a full reconciliation pass. The design is
// poll/reconcile, not hot-plug event driven: each tick is a complete sweep
// of the current output state.
type Reconciler struct {
	interval time.Duration
	engine   *engine.Engine
	logger   *slog.Logger
}

// New creates a reconciler for the given engine.
func New(cfg Config, eng *engine.Engine) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		interval: interval,
		engine:   eng,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until the context is
// cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass, used at startup
// so displays attached while the daemon was down are denied before the
// first tick.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// reconcile performs a single pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	summary, err := r.engine.Reconcile()
	if err != nil {
		r.logger.Error("reconciliation pass failed", "error", err)
		return
	}
	if summary.Disabled > 0 || summary.FailSafe != "" {
		r.logger.Info("reconciliation pass complete",
			"detected", summary.Detected,
			"known_active", summary.KnownActive,
			"unknown", summary.Unknown,
			"disabled", summary.Disabled,
			"fail_safe", summary.FailSafe)
	}
}
