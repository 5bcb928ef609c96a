// Package hooks runs the desktop integration commands that follow a layout
// change: window manager refresh, panel restart, wallpaper and presentation
// mode toggles. Hook failures are logged and never abort the change itself.
package hooks

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/displayctl/internal/logging"
)

// hookTimeout bounds each foreground hook command.
const hookTimeout = 10 * time.Second

// Config toggles the individual hook groups.
type Config struct {
	WindowManager bool
	Wallpaper     bool
	Dunst         bool
	Screensaver   bool
}

// DefaultConfig enables every hook group.
func DefaultConfig() Config {
	return Config{
		WindowManager: true,
		Wallpaper:     true,
		Dunst:         true,
		Screensaver:   true,
	}
}

type runner func(ctx context.Context, name string, args ...string) (string, error)

type spawner func(name string, args ...string) error

// Runner executes the configured hooks.
type Runner struct {
	cfg   Config
	log   logging.Logger
	run   runner
	spawn spawner
	home  string
}

// New builds a Runner using the real command implementations.
func New(cfg Config, log logging.Logger) *Runner {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &Runner{
		cfg:   cfg,
		log:   log,
		run:   runCommand,
		spawn: spawnCommand,
		home:  home,
	}
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, hookTimeout)
	defer cancel()
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	err := cmd.Run()
	return stdout.String(), err
}

func spawnCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Do not wait; panels are long-lived.
	return nil
}

// AfterApply runs every enabled hook group for a change that was applied.
// The presentation flag drives the dunst and screensaver toggles.
func (r *Runner) AfterApply(ctx context.Context, presentation bool) {
	r.refreshWindowManager(ctx)
	r.restoreWallpaper(ctx)
	r.setPresentationMode(ctx, presentation)
}

// refreshWindowManager tells herbstluftwm to re-detect monitors, drops the
// old panels and starts one barpyrus instance per monitor.
func (r *Runner) refreshWindowManager(ctx context.Context) {
	if !r.cfg.WindowManager {
		return
	}
	if _, err := r.run(ctx, "herbstclient", "detect_monitors"); err != nil {
		r.log.Warn("herbstclient detect_monitors failed", "error", err)
	}
	if _, err := r.run(ctx, "herbstclient", "emit_hook", "quit_panel"); err != nil {
		r.log.Warn("herbstclient emit_hook failed", "error", err)
	}

	out, err := r.run(ctx, "herbstclient", "list_monitors")
	if err != nil {
		r.log.Warn("herbstclient list_monitors failed", "error", err)
		return
	}
	for _, line := range strings.Split(out, "\n") {
		id, _, _ := strings.Cut(line, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := r.spawn("barpyrus", id); err != nil {
			r.log.Warn("starting panel failed", "monitor", id, "error", err)
		}
	}
}

// restoreWallpaper re-runs ~/.fehbg when it exists. A missing file is not an
// error, feh simply is not in use on that machine.
func (r *Runner) restoreWallpaper(ctx context.Context) {
	if !r.cfg.Wallpaper {
		return
	}
	path := filepath.Join(r.home, ".fehbg")
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	if _, err := r.run(ctx, path); err != nil {
		r.log.Warn("restoring wallpaper failed", "error", err)
	}
}

// setPresentationMode pauses dunst and disables screen blanking while
// presenting, and restores both otherwise.
func (r *Runner) setPresentationMode(ctx context.Context, present bool) {
	if r.cfg.Dunst {
		paused := "false"
		if present {
			paused = "true"
		}
		if _, err := r.run(ctx, "dunstctl", "set-paused", paused); err != nil {
			r.log.Warn("dunstctl set-paused failed", "error", err)
		}
	}
	if r.cfg.Screensaver {
		arg := "default"
		if present {
			arg = "off"
		}
		if _, err := r.run(ctx, "xset", "s", arg); err != nil {
			r.log.Warn("xset failed", "error", err)
		}
	}
}
