package compositor

import (
	"fmt"
	"os/exec"
)

// HyprlandAdapter is a stub for the Hyprland compositor family. It
// satisfies the Adapter contract so backend selection and the engine need
// no changes when the implementation lands, but enumeration and output
// control are not wired up yet.
//
// TODO: parse `hyprctl monitors -j` for Outputs and issue
// `hyprctl keyword monitor ...` for enable/disable.
type HyprlandAdapter struct{}

var _ Adapter = (*HyprlandAdapter)(nil)

// NewHyprlandAdapter returns the stub adapter.
func NewHyprlandAdapter() *HyprlandAdapter {
	return &HyprlandAdapter{}
}

func (a *HyprlandAdapter) Outputs() ([]Display, error) {
	return nil, nil
}

func (a *HyprlandAdapter) EnableOutput(connector, mode string, x, y int, scale float64) error {
	return nil
}

func (a *HyprlandAdapter) DisableOutput(connector string) error {
	return nil
}

func (a *HyprlandAdapter) Reload() error {
	out, err := exec.Command("hyprctl", "reload").CombinedOutput()
	if err != nil {
		return fmt.Errorf("hyprctl reload: %v: %s", err, out)
	}
	return nil
}
