package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/displayctl/internal/config"
)

// formFields holds the huh-bound values while the edit form is open.
// Everything is a string or bool for huh; conversion happens on submit.
type formFields struct {
	logLevel      string
	pickerBackend string

	xrandrCommand string
	queryTimeout  string
	applyTimeout  string
	pickerTimeout string

	roleInternal string
	roleHDMI     string
	rolePorts    string
	roleDocked   string

	homeExternal string
	homeVertical string

	presentResolution string

	hookWindowManager bool
	hookWallpaper     bool
	hookDunst         bool
	hookScreensaver   bool
}

func newFormFields(cfg *config.Config) formFields {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return formFields{
		logLevel:          cfg.LogLevel,
		pickerBackend:     cfg.PickerBackend,
		xrandrCommand:     cfg.Commands.Xrandr,
		queryTimeout:      strconv.Itoa(cfg.Commands.QueryTimeoutSeconds),
		applyTimeout:      strconv.Itoa(cfg.Commands.ApplyTimeoutSeconds),
		pickerTimeout:     strconv.Itoa(cfg.Commands.PickerTimeoutSeconds),
		roleInternal:      cfg.Roles.Internal,
		roleHDMI:          cfg.Roles.HDMI,
		rolePorts:         strings.Join(cfg.Roles.Ports, ", "),
		roleDocked:        strings.Join(cfg.Roles.Docked, ", "),
		homeExternal:      cfg.HomeLayout.External,
		homeVertical:      cfg.HomeLayout.Vertical,
		presentResolution: cfg.PresentResolution,
		hookWindowManager: cfg.Hooks.WindowManager,
		hookWallpaper:     cfg.Hooks.Wallpaper,
		hookDunst:         cfg.Hooks.Dunst,
		hookScreensaver:   cfg.Hooks.Screensaver,
	}
}

func (f *formFields) buildForm(width int) *huh.Form {
	levelOpts := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warning", "warning"),
		huh.NewOption("error", "error"),
	}
	backendOpts := []huh.Option[string]{
		huh.NewOption("auto", "auto"),
		huh.NewOption("rofi", "rofi"),
		huh.NewOption("dmenu", "dmenu"),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(levelOpts...).
				Value(&f.logLevel),

			huh.NewSelect[string]().
				Key("picker_backend").
				Title("Picker Backend").
				Description("Menu program for interactive selection").
				Options(backendOpts...).
				Value(&f.pickerBackend),

			huh.NewInput().
				Key("xrandr").
				Title("xrandr Command").
				Value(&f.xrandrCommand),

			huh.NewInput().
				Key("query_timeout").
				Title("Query Timeout").
				Description("Seconds; 0 disables the limit").
				Value(&f.queryTimeout),

			huh.NewInput().
				Key("apply_timeout").
				Title("Apply Timeout").
				Description("Seconds; 0 disables the limit").
				Value(&f.applyTimeout),

			huh.NewInput().
				Key("picker_timeout").
				Title("Picker Timeout").
				Description("Seconds; 0 waits for the user indefinitely").
				Value(&f.pickerTimeout),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("role_internal").
				Title("Internal Output").
				Description("Identity of the built-in panel").
				Value(&f.roleInternal),

			huh.NewInput().
				Key("role_hdmi").
				Title("HDMI Output").
				Value(&f.roleHDMI),

			huh.NewInput().
				Key("role_ports").
				Title("DisplayPort Outputs").
				Description("Comma-separated identities").
				Value(&f.rolePorts),

			huh.NewInput().
				Key("role_docked").
				Title("Docked Outputs").
				Description("Comma-separated identities").
				Value(&f.roleDocked),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("home_external").
				Title("Home: Main External").
				Value(&f.homeExternal),

			huh.NewInput().
				Key("home_vertical").
				Title("Home: Vertical External").
				Value(&f.homeVertical),

			huh.NewInput().
				Key("present_resolution").
				Title("Presentation Resolution").
				Description("WIDTHxHEIGHT, e.g. 1920x1080").
				Value(&f.presentResolution),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("hook_wm").
				Title("Window Manager Hook").
				Description("Re-detect monitors and restart panels").
				Value(&f.hookWindowManager),

			huh.NewConfirm().
				Key("hook_wallpaper").
				Title("Wallpaper Hook").
				Value(&f.hookWallpaper),

			huh.NewConfirm().
				Key("hook_dunst").
				Title("Notification Pause Hook").
				Value(&f.hookDunst),

			huh.NewConfirm().
				Key("hook_screensaver").
				Title("Screensaver Hook").
				Value(&f.hookScreensaver),
		),
	).WithWidth(width).WithShowHelp(true).WithShowErrors(true)
}

// apply writes the form values back into cfg. Values that do not parse are
// left unchanged; Validate catches the rest before saving.
func (f *formFields) apply(cfg *config.Config) {
	if cfg == nil {
		return
	}

	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.pickerBackend != "" {
		cfg.PickerBackend = f.pickerBackend
	}
	if f.xrandrCommand != "" {
		cfg.Commands.Xrandr = f.xrandrCommand
	}
	if v, err := strconv.Atoi(strings.TrimSpace(f.queryTimeout)); err == nil && v >= 0 {
		cfg.Commands.QueryTimeoutSeconds = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(f.applyTimeout)); err == nil && v >= 0 {
		cfg.Commands.ApplyTimeoutSeconds = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(f.pickerTimeout)); err == nil && v >= 0 {
		cfg.Commands.PickerTimeoutSeconds = v
	}
	if f.roleInternal != "" {
		cfg.Roles.Internal = f.roleInternal
	}
	cfg.Roles.HDMI = strings.TrimSpace(f.roleHDMI)
	cfg.Roles.Ports = splitIdentities(f.rolePorts)
	cfg.Roles.Docked = splitIdentities(f.roleDocked)
	if f.homeExternal != "" {
		cfg.HomeLayout.External = strings.TrimSpace(f.homeExternal)
	}
	if f.homeVertical != "" {
		cfg.HomeLayout.Vertical = strings.TrimSpace(f.homeVertical)
	}
	if f.presentResolution != "" {
		cfg.PresentResolution = strings.TrimSpace(f.presentResolution)
	}
	cfg.Hooks.WindowManager = f.hookWindowManager
	cfg.Hooks.Wallpaper = f.hookWallpaper
	cfg.Hooks.Dunst = f.hookDunst
	cfg.Hooks.Screensaver = f.hookScreensaver
}

func splitIdentities(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
