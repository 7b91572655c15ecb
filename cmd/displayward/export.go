package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/displayward/displayward/internal/compositor"
	"github.com/displayward/displayward/internal/config"
	"github.com/displayward/displayward/internal/export"
)

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayward export [flags]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Snapshot the current output layout as a sway config fragment.")
		fmt.Fprintln(os.Stderr, "The generated file is never read back by the daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	dryRun := fs.Bool("dry-run", false, "Print the generated config without writing")
	noBackup := fs.Bool("no-backup", false, "Skip the timestamped backup of the existing file")
	noReload := fs.Bool("no-reload", false, "Don't reload the compositor after writing")
	pathFlag := fs.String("path", "", "Output file (default: ~/.config/sway/config.d/99-display-layout.conf)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "export takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	backend, err := compositor.ParseBackend(cfg.Backend)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	adapter, err := compositor.New(backend, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	opts := export.Options{
		Path:   cfg.Export.Path,
		Backup: cfg.Export.Backup && !*noBackup,
		Reload: cfg.Export.Reload && !*noReload,
		DryRun: *dryRun,
		Out:    os.Stdout,
	}
	if *pathFlag != "" {
		opts.Path = *pathFlag
	}

	if err := export.Run(adapter, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
