// Package engine implements the display reconciliation policy: unknown
// displays are disabled unless explicitly authorized, and at least one
// display always stays active.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/displayward/displayward/internal/authstore"
	"github.com/displayward/displayward/internal/compositor"
)

// ErrDisplayNotFound indicates an authorize target absent from the live
// enumeration. Non-fatal; no state changes.
var ErrDisplayNotFound = errors.New("display not found")

// Config holds engine construction options.
type Config struct {
	// ApplyStoredMode switches enable commands from the compositor's
	// preferred-mode request to the exact mode string kept in the
	// authorization record. Off by default: the stored mode then documents
	// what was detected at authorization time while the compositor picks
	// the mode it prefers.
	ApplyStoredMode bool
	Logger          *slog.Logger
}

// Engine consumes a compositor adapter and an authorization store,
// classifies detected displays, and issues the minimal set of
// enable/disable commands. Not safe for concurrent use.
type Engine struct {
	adapter         compositor.Adapter
	store           *authstore.Store
	logger          *slog.Logger
	applyStoredMode bool
	cache           []compositor.Display
}

// New creates an engine. The store handle is the engine's only path to the
// authorization table; it never mutates the table directly.
func New(cfg Config, adapter compositor.Adapter, store *authstore.Store) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		adapter:         adapter,
		store:           store,
		logger:          logger,
		applyStoredMode: cfg.ApplyStoredMode,
	}
}

// Status pairs a detected display with its authorization state for
// presentation.
type Status struct {
	Display    compositor.Display
	Known      bool
	Authorized bool // record exists with Active set
}

// Summary reports what a reconciliation pass saw and did.
type Summary struct {
	Detected    int
	KnownActive int
	Unknown     int
	Disabled    int
	// FailSafe names the connector spared or enabled by the fail-safe
	// branch, empty when the branch did not run.
	FailSafe string
}

// Refresh re-enumerates displays and replaces the cached list. A malformed
// enumeration payload degrades to zero displays rather than failing.
func (e *Engine) Refresh() error {
	displays, err := e.adapter.Outputs()
	if err != nil {
		if errors.Is(err, compositor.ErrMalformedResponse) {
			e.logger.Warn("enumeration response malformed, treating as zero displays", "error", err)
			e.cache = nil
			return nil
		}
		return fmt.Errorf("enumerate outputs: %w", err)
	}
	e.cache = displays
	return nil
}

// Displays returns the last cached enumeration with authorization flags.
func (e *Engine) Displays() []Status {
	statuses := make([]Status, 0, len(e.cache))
	for _, d := range e.cache {
		rec, known := e.store.Get(d.Identity())
		statuses = append(statuses, Status{
			Display:    d,
			Known:      known,
			Authorized: known && rec.Active,
		})
	}
	return statuses
}

// Reconcile performs one enumerate-classify-act pass. Each pass is a
// complete, idempotent-by-intent sweep over the full current state; no
// diffing against a previous pass.
func (e *Engine) Reconcile() (Summary, error) {
	if err := e.Refresh(); err != nil {
		return Summary{}, err
	}
	displays := e.cache

	var unknown []compositor.Display
	knownActive := 0
	for _, d := range displays {
		if e.store.IsKnown(d.Identity()) {
			// Known-but-inactive displays are left alone this pass; only
			// known-and-active ones shield unknowns from the fail-safe.
			if d.Active {
				knownActive++
			}
			continue
		}
		unknown = append(unknown, d)
	}

	summary := Summary{
		Detected:    len(displays),
		KnownActive: knownActive,
		Unknown:     len(unknown),
	}

	if knownActive == 0 {
		if len(unknown) == 0 {
			e.logger.Warn("no displays to reconcile", "detected", len(displays))
			return summary, nil
		}

		// Fail-safe: every candidate for disabling is unknown, so one must
		// survive or the session goes dark.
		spared := -1
		for i, d := range unknown {
			if d.Active {
				spared = i
				break
			}
		}
		if spared >= 0 {
			d := unknown[spared]
			// Spared but not recorded: the display stays unknown until the
			// user explicitly authorizes it.
			e.logger.Info("fail-safe: keeping display active",
				"connector", d.ConnectorName, "identity", d.Identity())
			summary.FailSafe = d.ConnectorName
			unknown = append(unknown[:spared], unknown[spared+1:]...)
		} else {
			// Headless start: nothing is active at all. Enable the first
			// display in enumeration order and record it as authorized.
			d := unknown[0]
			e.logger.Info("fail-safe: activating display",
				"connector", d.ConnectorName, "identity", d.Identity())
			if err := e.store.Set(d.Identity(), authstore.Record{
				Active:   true,
				Mode:     d.Mode(),
				Position: "0 0",
				Scale:    1.0,
			}); err != nil {
				e.logger.Warn("authorization saved in memory only, disk write failed", "error", err)
			}
			if err := e.adapter.EnableOutput(d.ConnectorName, e.enableMode(d.Mode()), 0, 0, 1.0); err != nil {
				e.logger.Warn("failed to enable display",
					"connector", d.ConnectorName, "error", err)
			}
			summary.FailSafe = d.ConnectorName
			unknown = unknown[1:]
		}
	}

	for _, d := range unknown {
		if !d.Active {
			continue
		}
		e.logger.Info("disabling unknown display",
			"connector", d.ConnectorName, "identity", d.Identity())
		if err := e.adapter.DisableOutput(d.ConnectorName); err != nil {
			e.logger.Warn("failed to disable display",
				"connector", d.ConnectorName, "error", err)
			continue
		}
		// No record is written: the display stays unknown so future passes
		// keep denying it until the user authorizes it.
		summary.Disabled++
	}

	return summary, nil
}

// Authorize records the display's currently detected geometry as its
// authorized configuration and enables it. This is the only path that
// transitions a display from unknown to known.
func (e *Engine) Authorize(identity string) error {
	d, ok := e.lookup(identity)
	if !ok {
		if err := e.Refresh(); err != nil {
			return err
		}
		d, ok = e.lookup(identity)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDisplayNotFound, identity)
	}

	rec := authstore.Record{
		Active:   true,
		Mode:     d.Mode(),
		Position: fmt.Sprintf("%d %d", d.X, d.Y),
		Scale:    d.Scale,
	}
	if err := e.store.Set(identity, rec); err != nil {
		e.logger.Warn("authorization saved in memory only, disk write failed",
			"identity", identity, "error", err)
	}

	if err := e.adapter.EnableOutput(d.ConnectorName, e.enableMode(rec.Mode), d.X, d.Y, d.Scale); err != nil {
		return fmt.Errorf("enable %s: %w", d.ConnectorName, err)
	}
	e.logger.Info("authorized display", "connector", d.ConnectorName, "identity", identity)
	return nil
}

// Revoke marks a known display as not authorized and disables it. The
// identity is resolved against the cached enumeration only; an absent
// identity is a silent no-op. A display without a record is disabled but
// stays unknown: authorize remains the only unknown-to-known transition.
func (e *Engine) Revoke(identity string) error {
	d, ok := e.lookup(identity)
	if !ok {
		return nil
	}

	if rec, known := e.store.Get(identity); known {
		rec.Active = false
		if err := e.store.Set(identity, rec); err != nil {
			e.logger.Warn("revocation saved in memory only, disk write failed",
				"identity", identity, "error", err)
		}
	}

	if err := e.adapter.DisableOutput(d.ConnectorName); err != nil {
		return fmt.Errorf("disable %s: %w", d.ConnectorName, err)
	}
	e.logger.Info("revoked display", "connector", d.ConnectorName, "identity", identity)
	return nil
}

// Forget removes the authorization record for identity, returning the
// display to the default-deny state on the next pass.
func (e *Engine) Forget(identity string) error {
	return e.store.Forget(identity)
}

func (e *Engine) lookup(identity string) (compositor.Display, bool) {
	for _, d := range e.cache {
		if d.Identity() == identity {
			return d, true
		}
	}
	return compositor.Display{}, false
}

func (e *Engine) enableMode(stored string) string {
	if e.applyStoredMode {
		return stored
	}
	return compositor.ModePreferred
}
