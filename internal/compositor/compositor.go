package compositor

import (
	"errors"
	"fmt"
)

// ModePreferred asks the compositor to pick the output's preferred mode
// instead of a specific resolution.
const ModePreferred = "preferred"

var (
	// ErrAdapterUnavailable indicates the compositor control channel could
	// not be reached, even through the degraded query path.
	ErrAdapterUnavailable = errors.New("compositor adapter unavailable")

	// ErrMalformedResponse indicates an enumeration payload that could not
	// be parsed. Callers should treat this as "zero displays detected".
	ErrMalformedResponse = errors.New("malformed enumeration response")
)

// Display describes one detected output. Instances are rebuilt fresh on
// every enumeration and never mutated in place; the connector name is
// whatever port label the compositor currently assigns and is not stable
// across reboots or cable swaps.
type Display struct {
	ConnectorName string
	Make          string
	Model         string
	Serial        string
	Width         int
	Height        int
	RefreshHz     float64 // normalized from milli-Hz at the adapter boundary
	X             int
	Y             int
	Scale         float64
	Active        bool
}

// Identity derives the stable key for the physical panel from its EDID
// attributes. Two enumerations of the same panel yield the same identity
// even when the connector name differs.
func (d Display) Identity() string {
	return d.Make + "-" + d.Model + "-" + d.Serial
}

// Mode returns the detected resolution as a mode string.
func (d Display) Mode() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// ModeWithRefresh returns the detected resolution including the refresh
// rate, in the form the compositor accepts in output commands.
func (d Display) ModeWithRefresh() string {
	return fmt.Sprintf("%dx%d@%.3fHz", d.Width, d.Height, d.RefreshHz)
}

// Adapter abstracts output control across compositor variants. Exactly one
// implementation is chosen per process lifetime; see Detect. All calls are
// blocking round-trips to the compositor's control channel.
type Adapter interface {
	// Outputs queries the compositor's live output state.
	Outputs() ([]Display, error)

	// EnableOutput activates the named output with the given geometry.
	// Success is not re-verified by a follow-up enumeration.
	EnableOutput(connector, mode string, x, y int, scale float64) error

	// DisableOutput deactivates the named output.
	DisableOutput(connector string) error

	// Reload asks the compositor to re-read its static configuration.
	Reload() error
}
