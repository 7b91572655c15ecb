package compositor

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Backend identifies a supported compositor family.
type Backend string

const (
	BackendSway     Backend = "sway"
	BackendHyprland Backend = "hyprland"
)

// ParseBackend validates a backend name from configuration. The empty
// string and "auto" defer to session detection.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Detect(), nil
	case "sway":
		return BackendSway, nil
	case "hyprland":
		return BackendHyprland, nil
	default:
		return "", fmt.Errorf("unknown compositor backend %q", name)
	}
}

// Detect resolves which compositor backend to use from session environment
// markers. Called once at startup; the result is threaded through
// construction rather than re-read per call.
func Detect() Backend {
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case os.Getenv("SWAYSOCK") != "" || strings.Contains(desktop, "sway"):
		return BackendSway
	case os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" || strings.Contains(desktop, "hyprland"):
		return BackendHyprland
	default:
		// No recognizable session markers. Sway is the primary target, so
		// its adapter (with the swaymsg fallback) is the safest default.
		return BackendSway
	}
}

// New constructs the adapter for the selected backend.
func New(backend Backend, logger *slog.Logger) (Adapter, error) {
	switch backend {
	case BackendSway:
		return NewSwayAdapter(logger), nil
	case BackendHyprland:
		return NewHyprlandAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown compositor backend %q", backend)
	}
}
