package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/displayctl/internal/config"
	"github.com/1broseidon/displayctl/internal/engine"
	"github.com/1broseidon/displayctl/internal/hooks"
	"github.com/1broseidon/displayctl/internal/ipc"
	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/notify"
	"github.com/1broseidon/displayctl/internal/picker"
	"github.com/1broseidon/displayctl/internal/session"
	"github.com/1broseidon/displayctl/internal/tui"
	"github.com/1broseidon/displayctl/internal/xrandr"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		os.Exit(runPick(nil))
	}

	switch os.Args[1] {
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "listen", "-l", "--listen":
		os.Exit(runListen(os.Args[2:]))
	case "apply":
		os.Exit(runApply(os.Args[2:]))
	case "outputs":
		os.Exit(runOutputs(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version", "-v", "--version":
		fmt.Printf("displayctl %s\n", version)
		os.Exit(0)
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
	fmt.Fprintln(w, "Usage: displayctl [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run without a command to open the interactive layout picker.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  pick                Open the interactive layout picker")
	fmt.Fprintln(w, "  listen              Watch for monitor hotplug events (foreground)")
	fmt.Fprintln(w, "  apply <selection>   Apply a layout without prompting")
	fmt.Fprintln(w, "  outputs             List connected outputs")
	fmt.Fprintln(w, "  status              Show listener status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the settings editor")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'displayctl <command> --help' for command-specific options.")
}

// deps bundles the wired components a command needs.
type deps struct {
	cfg      *config.Config
	log      logging.Logger
	engine   *engine.Engine
	notifier notify.Notifier
}

// buildDeps loads configuration and wires the engine. withPicker controls
// whether a picker backend is resolved; commands that never prompt skip it
// so a missing rofi does not stop them.
func buildDeps(path string, withPicker bool) (*deps, error) {
	var cfg *config.Config
	var err error
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(path)
	}
	if err != nil {
		return nil, err
	}

	log := logging.New(os.Stderr, cfg.LogLevel)
	logging.SetDefault(log)

	notifier := notify.New("displayctl", log)

	d := engine.Deps{
		Xrandr:   xrandr.NewCommandClient(cfg.RoleTable(), cfg.XrandrOptions(), log),
		Resolver: cfg.Resolver(),
		Presets:  cfg.LayoutPresets(),
		Hooks:    hooks.New(cfg.HookConfig(), log),
		Notifier: notifier,
		Log:      log,
	}

	if withPicker {
		backend, err := picker.NewBackend(cfg.PickerBackend)
		if err != nil {
			return nil, err
		}
		store, err := session.NewFileStore()
		if err != nil {
			return nil, err
		}
		d.Sessions = session.NewCoordinator(store, backend.Command(), log)
		d.Picker = engine.WrapBackend(backend)
		d.PickerTimeout = cfg.PickerTimeout()
	}

	return &deps{
		cfg:      cfg,
		log:      log,
		engine:   engine.New(d),
		notifier: notifier,
	}, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl [pick] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the layout picker. A picker already on screen is replaced.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "pick takes no arguments")
		fs.Usage()
		return 2
	}

	d, err := buildDeps(*path, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Errors are already logged and notified by the engine.
	if err := d.engine.RunInteractive(ctx); err != nil {
		return 1
	}
	return 0
}

func runApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
	preset := fs.String("preset", "", "Placement preset for present and ad-hoc layouts (default: first configured)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl apply [--preset NAME] <selection>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Apply a layout without prompting. The selection is a scenario name")
		fmt.Fprintln(os.Stderr, "(internal, home, home-present, present) or an external output label.")
		fmt.Fprintln(os.Stderr, "Goes through the running listener when one is reachable.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "apply requires exactly one selection")
		fs.Usage()
		return 2
	}
	selection := fs.Arg(0)

	// Prefer the listener so its hooks and session state stay in one process.
	client := ipc.NewClient()
	if client.Ping() {
		if err := client.Apply(selection, *preset); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	d, err := buildDeps(*path, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := d.engine.ApplyScenario(ctx, selection, *preset); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runOutputs(args []string) int {
	fs := flag.NewFlagSet("outputs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl outputs [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List connected outputs with their roles.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "outputs takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if client.Ping() {
		data, err := client.GetOutputs()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return printOutputs(data.Outputs, *jsonOut)
	}

	d, err := buildDeps(*path, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	outputs, err := d.engine.Outputs(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	infos := make([]ipc.OutputInfo, 0, len(outputs))
	for _, o := range outputs {
		infos = append(infos, ipc.OutputInfo{
			Name:  o.Name,
			Role:  o.Role.Kind.String(),
			Label: o.Label(),
			Model: o.Model,
		})
	}
	return printOutputs(infos, *jsonOut)
}

func printOutputs(outputs []ipc.OutputInfo, jsonOut bool) int {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	for _, o := range outputs {
		line := fmt.Sprintf("%-12s %-10s %s", o.Name, o.Role, o.Label)
		if o.Model != "" {
			line += "  " + o.Model
		}
		fmt.Println(line)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show listener status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	last := status.LastSelection
	if last == "" {
		last = "(none)"
	}
	fmt.Printf("listener_running: %v\n", status.ListenerRunning)
	fmt.Printf("session_state:    %s\n", status.SessionState)
	fmt.Printf("last_selection:   %s\n", last)
	fmt.Printf("connected_count:  %d\n", status.ConnectedCount)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  displayctl config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  displayctl config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
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
		path := fs.String("path", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
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

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/displayctl/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: displayctl tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive settings editor. Shows listener state when one is running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  e         Edit settings")
		fmt.Fprintln(os.Stderr, "  r         Reload config and listener state")
		fmt.Fprintln(os.Stderr, "  q, Esc    Quit")
		fmt.Fprintln(os.Stderr, "  Ctrl+C    Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := tui.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
