package compositor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/joshuarubin/go-sway"
)

// SwayAdapter drives sway through its IPC socket, falling back to the
// swaymsg CLI when the socket is unreachable. Commands issued through the
// fallback are best-effort and unverified.
type SwayAdapter struct {
	client sway.Client // nil when the IPC socket was unreachable at construction
	logger *slog.Logger
}

var _ Adapter = (*SwayAdapter)(nil)

// NewSwayAdapter connects to the sway IPC socket. Construction never fails
// hard: when the socket is unreachable the adapter degrades to swaymsg and
// surfaces ErrAdapterUnavailable only once that path fails too.
func NewSwayAdapter(logger *slog.Logger) *SwayAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := sway.New(context.Background())
	if err != nil {
		logger.Warn("sway IPC socket unreachable, degrading to swaymsg", "error", err)
		client = nil
	}
	return &SwayAdapter{client: client, logger: logger}
}

func (a *SwayAdapter) Outputs() ([]Display, error) {
	if a.client != nil {
		outs, err := a.client.GetOutputs(context.Background())
		if err == nil {
			return displaysFromIPC(outs), nil
		}
		a.logger.Warn("sway IPC enumeration failed, retrying via swaymsg", "error", err)
	}
	return a.outputsFallback()
}

func (a *SwayAdapter) EnableOutput(connector, mode string, x, y int, scale float64) error {
	return a.command(enableCommand(connector, mode, x, y, scale))
}

func (a *SwayAdapter) DisableOutput(connector string) error {
	return a.command(disableCommand(connector))
}

func (a *SwayAdapter) Reload() error {
	return a.command("reload")
}

func enableCommand(connector, mode string, x, y int, scale float64) string {
	return fmt.Sprintf("output %s enable mode %s pos %d %d scale %g", connector, mode, x, y, scale)
}

func disableCommand(connector string) string {
	return fmt.Sprintf("output %s disable", connector)
}

// command sends a single-line control command through the IPC socket, or
// through swaymsg when running degraded.
func (a *SwayAdapter) command(cmd string) error {
	if a.client != nil {
		replies, err := a.client.RunCommand(context.Background(), cmd)
		if err != nil {
			return fmt.Errorf("sway command %q: %w", cmd, err)
		}
		for _, r := range replies {
			if !r.Success {
				return fmt.Errorf("sway rejected %q: %s", cmd, r.Error)
			}
		}
		return nil
	}

	out, err := exec.Command("swaymsg", cmd).CombinedOutput()
	if err != nil {
		return fmt.Errorf("swaymsg %q: %v: %s: %w",
			cmd, err, strings.TrimSpace(string(out)), ErrAdapterUnavailable)
	}
	return nil
}

func displaysFromIPC(outs []sway.Output) []Display {
	displays := make([]Display, 0, len(outs))
	for _, o := range outs {
		scale := o.Scale
		if scale == 0 {
			scale = 1.0
		}
		d := Display{
			ConnectorName: o.Name,
			Make:          o.Make,
			Model:         o.Model,
			Serial:        o.Serial,
			Active:        o.Active,
			Scale:         scale,
			X:             int(o.Rect.X),
			Y:             int(o.Rect.Y),
			Width:         int(o.Rect.Width),
			Height:        int(o.Rect.Height),
			RefreshHz:     60.0,
		}
		if o.CurrentMode.Width > 0 {
			d.Width = int(o.CurrentMode.Width)
			d.Height = int(o.CurrentMode.Height)
			// The wire carries milli-Hz; normalize at the boundary.
			d.RefreshHz = float64(o.CurrentMode.Refresh) / 1000.0
		}
		displays = append(displays, d)
	}
	return displays
}

// swayOutput mirrors the swaymsg -t get_outputs response shape.
type swayOutput struct {
	Name        string  `json:"name"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Serial      string  `json:"serial"`
	Active      bool    `json:"active"`
	Scale       float64 `json:"scale"`
	CurrentMode struct {
		Width   int `json:"width"`
		Height  int `json:"height"`
		Refresh int `json:"refresh"`
	} `json:"current_mode"`
	Rect struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"rect"`
}

func (a *SwayAdapter) outputsFallback() ([]Display, error) {
	out, err := exec.Command("swaymsg", "-t", "get_outputs").Output()
	if err != nil {
		return nil, fmt.Errorf("swaymsg -t get_outputs: %v: %w", err, ErrAdapterUnavailable)
	}
	return parseOutputs(out)
}

func parseOutputs(data []byte) ([]Display, error) {
	var raw []swayOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	displays := make([]Display, 0, len(raw))
	for _, o := range raw {
		scale := o.Scale
		if scale == 0 {
			scale = 1.0
		}
		refresh := 60.0
		if o.CurrentMode.Refresh > 0 {
			refresh = float64(o.CurrentMode.Refresh) / 1000.0
		}
		displays = append(displays, Display{
			ConnectorName: o.Name,
			Make:          o.Make,
			Model:         o.Model,
			Serial:        o.Serial,
			Active:        o.Active,
			Scale:         scale,
			Width:         o.CurrentMode.Width,
			Height:        o.CurrentMode.Height,
			RefreshHz:     refresh,
			X:             o.Rect.X,
			Y:             o.Rect.Y,
		})
	}
	return displays, nil
}
