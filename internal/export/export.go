// Package export writes a one-shot snapshot of the current output layout
// as a compositor config fragment. It is a standalone collaborator of the
// engine: the reconciliation policy never reads the generated file.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/displayward/displayward/internal/compositor"
)

// Options control a single export run.
type Options struct {
	// Path of the generated file. Empty selects DefaultPath.
	Path string
	// Backup keeps a timestamped copy of the previous file.
	Backup bool
	// Reload asks the compositor to re-read its configuration afterwards.
	Reload bool
	// DryRun prints the generated content to Out instead of writing.
	DryRun bool
	// Out receives progress lines and dry-run output. Defaults to
	// os.Stdout.
	Out io.Writer
}

// DefaultPath returns the conventional sway drop-in location for the
// generated fragment.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "sway", "config.d", "99-display-layout.conf"), nil
}

// Run snapshots the adapter's current outputs and persists them as output
// commands.
func Run(adapter compositor.Adapter, opts Options) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	path := opts.Path
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	displays, err := adapter.Outputs()
	if err != nil {
		return fmt.Errorf("enumerate outputs: %w", err)
	}
	fmt.Fprintf(out, "found %d output(s)\n", len(displays))

	content := render(Lines(displays), time.Now())

	if opts.DryRun {
		fmt.Fprintf(out, "dry run, would write to %s:\n%s", path, content)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if opts.Backup {
		if backupPath, err := backup(path); err != nil {
			fmt.Fprintf(out, "warning: failed to back up existing config: %v\n", err)
		} else if backupPath != "" {
			fmt.Fprintf(out, "backup created: %s\n", backupPath)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(out, "configuration written to %s\n", path)

	if opts.Reload {
		if err := adapter.Reload(); err != nil {
			fmt.Fprintf(out, "warning: failed to reload compositor: %v\n", err)
		} else {
			fmt.Fprintln(out, "compositor configuration reloaded")
		}
	}
	return nil
}

// Lines renders one output command per display: a disable line for
// inactive outputs, a full mode/pos/scale line for active ones.
func Lines(displays []compositor.Display) []string {
	lines := make([]string, 0, len(displays))
	for _, d := range displays {
		if !d.Active {
			lines = append(lines, fmt.Sprintf("output %s disable", d.ConnectorName))
			continue
		}
		lines = append(lines, fmt.Sprintf("output %s mode %s pos %d %d scale %g",
			d.ConnectorName, d.ModeWithRefresh(), d.X, d.Y, d.Scale))
	}
	return lines
}

func render(lines []string, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Auto-generated display configuration\n")
	fmt.Fprintf(&b, "# Created by displayward on %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString("# DO NOT EDIT MANUALLY - This file will be overwritten\n")
	b.WriteString("# To update: run 'displayward export' again\n")
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	return b.String()
}

// backup copies the existing file aside with a timestamp suffix. Returns
// the backup path, or empty when there was nothing to back up.
func backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	backupPath := fmt.Sprintf("%s.backup_%s", path, time.Now().Format("20060102_150405"))
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", err
	}
	return backupPath, nil
}
