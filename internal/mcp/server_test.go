package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/displayward/displayward/internal/authstore"
	"github.com/displayward/displayward/internal/compositor"
	"github.com/displayward/displayward/internal/engine"
)

type fakeAdapter struct {
	displays []compositor.Display
	enabled  []string
	disabled []string
}

func (a *fakeAdapter) Outputs() ([]compositor.Display, error) { return a.displays, nil }

func (a *fakeAdapter) EnableOutput(connector, mode string, x, y int, scale float64) error {
	a.enabled = append(a.enabled, connector)
	return nil
}

func (a *fakeAdapter) DisableOutput(connector string) error {
	a.disabled = append(a.disabled, connector)
	return nil
}

func (a *fakeAdapter) Reload() error { return nil }

func display(connector, serial string, active bool) compositor.Display {
	return compositor.Display{
		ConnectorName: connector,
		Make:          "Dell Inc.",
		Model:         "U2720Q",
		Serial:        serial,
		Width:         1920,
		Height:        1080,
		RefreshHz:     60.0,
		Scale:         1.0,
		Active:        active,
	}
}

func newTestServer(t *testing.T, adapter compositor.Adapter) *Server {
	t.Helper()
	store := authstore.Open(filepath.Join(t.TempDir(), "displays.json"), nil)
	return NewServer(engine.New(engine.Config{}, adapter, store))
}

func TestHandleListDisplays(t *testing.T) {
	adapter := &fakeAdapter{displays: []compositor.Display{
		display("eDP-1", "AAA", true),
		display("DP-3", "BBB", false),
	}}
	s := newTestServer(t, adapter)

	if err := s.engine.Authorize("Dell Inc.-U2720Q-AAA"); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	_, out, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Displays) != 2 {
		t.Fatalf("expected two displays, got %d", len(out.Displays))
	}
	first := out.Displays[0]
	if first.Identity != "Dell Inc.-U2720Q-AAA" {
		t.Fatalf("unexpected identity %q", first.Identity)
	}
	if !first.Known || !first.Authorized {
		t.Fatalf("authorized display must report known and authorized, got %+v", first)
	}
	second := out.Displays[1]
	if second.Known || second.Authorized {
		t.Fatalf("unknown display must report neither flag, got %+v", second)
	}
	if second.Mode != "1920x1080" {
		t.Fatalf("unexpected mode %q", second.Mode)
	}
}

func TestHandleAuthorizeDisplay(t *testing.T) {
	adapter := &fakeAdapter{displays: []compositor.Display{display("DP-3", "BBB", false)}}
	s := newTestServer(t, adapter)

	_, out, err := s.handleAuthorizeDisplay(context.Background(), nil, AuthorizeDisplayInput{
		Identity: "Dell Inc.-U2720Q-BBB",
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if out.Identity != "Dell Inc.-U2720Q-BBB" {
		t.Fatalf("unexpected identity %q", out.Identity)
	}
	if len(adapter.enabled) != 1 || adapter.enabled[0] != "DP-3" {
		t.Fatalf("expected DP-3 enabled, got %v", adapter.enabled)
	}
}

func TestHandleAuthorizeDisplay_NotFound(t *testing.T) {
	s := newTestServer(t, &fakeAdapter{})

	_, _, err := s.handleAuthorizeDisplay(context.Background(), nil, AuthorizeDisplayInput{
		Identity: "Acme-X1-NOPE",
	})
	if !errors.Is(err, engine.ErrDisplayNotFound) {
		t.Fatalf("expected ErrDisplayNotFound, got %v", err)
	}
}

func TestHandleRevokeDisplay(t *testing.T) {
	adapter := &fakeAdapter{displays: []compositor.Display{display("DP-3", "BBB", true)}}
	s := newTestServer(t, adapter)

	if err := s.engine.Authorize("Dell Inc.-U2720Q-BBB"); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	_, out, err := s.handleRevokeDisplay(context.Background(), nil, RevokeDisplayInput{
		Identity: "Dell Inc.-U2720Q-BBB",
	})
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if out.Identity != "Dell Inc.-U2720Q-BBB" {
		t.Fatalf("unexpected identity %q", out.Identity)
	}
	if len(adapter.disabled) != 1 || adapter.disabled[0] != "DP-3" {
		t.Fatalf("expected DP-3 disabled, got %v", adapter.disabled)
	}
}

func TestHandleForgetDisplay(t *testing.T) {
	adapter := &fakeAdapter{displays: []compositor.Display{display("DP-3", "BBB", true)}}
	s := newTestServer(t, adapter)

	if err := s.engine.Authorize("Dell Inc.-U2720Q-BBB"); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	_, _, err := s.handleForgetDisplay(context.Background(), nil, ForgetDisplayInput{
		Identity: "Dell Inc.-U2720Q-BBB",
	})
	if err != nil {
		t.Fatalf("forget: %v", err)
	}

	// Forgotten displays fall back to default deny on the next pass.
	_, sum, err := s.handleReconcile(context.Background(), nil, ReconcileInput{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if sum.Unknown != 1 {
		t.Fatalf("expected one unknown display after forget, got %+v", sum)
	}
}

func TestHandleReconcile(t *testing.T) {
	adapter := &fakeAdapter{displays: []compositor.Display{
		display("eDP-1", "AAA", true),
		display("DP-3", "BBB", true),
	}}
	s := newTestServer(t, adapter)

	if err := s.engine.Authorize("Dell Inc.-U2720Q-AAA"); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	_, out, err := s.handleReconcile(context.Background(), nil, ReconcileInput{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.Detected != 2 || out.KnownActive != 1 || out.Unknown != 1 || out.Disabled != 1 {
		t.Fatalf("unexpected summary %+v", out)
	}
	if out.FailSafe != "" {
		t.Fatalf("fail safe must not trip with a known active display, got %q", out.FailSafe)
	}
	if len(adapter.disabled) != 1 || adapter.disabled[0] != "DP-3" {
		t.Fatalf("expected DP-3 disabled, got %v", adapter.disabled)
	}
}
