package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/displayward/displayward/internal/engine"
	"gopkg.in/yaml.v3"

	"github.com/displayward/displayward/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "reconcile":
		os.Exit(runReconcile(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "authorize":
		os.Exit(runAuthorize(os.Args[2:]))
	case "revoke":
		os.Exit(runRevoke(os.Args[2:]))
	case "forget":
		os.Exit(runForget(os.Args[2:]))
	case "export":
		os.Exit(runExport(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: displayward <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run the reconcile loop (foreground)")
	fmt.Fprintln(w, "  reconcile           Run a single reconciliation pass")
	fmt.Fprintln(w, "  list                List detected displays and authorization state")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  authorize <id>      Authorize a display by identity and enable it")
	fmt.Fprintln(w, "  revoke <id>         Revoke a display's authorization and disable it")
	fmt.Fprintln(w, "  forget <id>         Remove a display's authorization record")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  export              Write current layout as a sway config fragment")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'displayward <command> --help' for command-specific options.")
}

func runReconcile(args []string) int {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayward reconcile")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Enumerate displays, disable unknown active ones, and apply the")
		fmt.Fprintln(os.Stderr, "fail-safe that keeps at least one display active.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reconcile takes no arguments")
		fs.Usage()
		return 2
	}

	eng, _, err := buildEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	summary, err := eng.Reconcile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("detected:     %d\n", summary.Detected)
	fmt.Printf("known_active: %d\n", summary.KnownActive)
	fmt.Printf("unknown:      %d\n", summary.Unknown)
	fmt.Printf("disabled:     %d\n", summary.Disabled)
	if summary.FailSafe != "" {
		fmt.Printf("fail_safe:    %s\n", summary.FailSafe)
	}
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayward list")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List detected displays with identity and authorization flags.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	eng, _, err := buildEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := eng.Refresh(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	statuses := eng.Displays()
	if len(statuses) == 0 {
		fmt.Println("no displays detected")
		return 0
	}
	for _, st := range statuses {
		d := st.Display
		state := "unknown"
		if st.Authorized {
			state = "authorized"
		} else if st.Known {
			state = "known"
		}
		power := "off"
		if d.Active {
			power = "on"
		}
		fmt.Printf("%-10s %-40s %s@%.3fHz pos %d,%d scale %g [%s, %s]\n",
			d.ConnectorName, d.Identity(), d.Mode(), d.RefreshHz, d.X, d.Y, d.Scale, power, state)
	}
	return 0
}

func runAuthorize(args []string) int {
	return runIdentityCommand("authorize", args,
		"Authorize a display: persist its detected geometry and enable the output.",
		func(eng *engine.Engine, identity string) error {
			if err := eng.Refresh(); err != nil {
				return err
			}
			return eng.Authorize(identity)
		})
}

func runRevoke(args []string) int {
	return runIdentityCommand("revoke", args,
		"Revoke a display's authorization and disable the output.",
		func(eng *engine.Engine, identity string) error {
			if err := eng.Refresh(); err != nil {
				return err
			}
			return eng.Revoke(identity)
		})
}

func runForget(args []string) int {
	return runIdentityCommand("forget", args,
		"Remove a display's authorization record (default-deny on next pass).",
		func(eng *engine.Engine, identity string) error {
			return eng.Forget(identity)
		})
}

func runIdentityCommand(name string, args []string, help string, fn func(*engine.Engine, string) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: displayward %s <identity>\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The identity is the make-model-serial key shown by 'displayward list'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one <identity>\n", name)
		fs.Usage()
		return 2
	}

	eng, _, err := buildEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := fn(eng, fs.Arg(0)); err != nil {
		if errors.Is(err, engine.ErrDisplayNotFound) {
			fmt.Fprintf(os.Stderr, "%v (is it connected? see 'displayward list')\n", err)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  displayward config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  displayward config print [--path PATH]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/displayward/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/displayward/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		var err error
		if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
