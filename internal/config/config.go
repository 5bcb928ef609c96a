// Package config loads, validates and persists the displayctl configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/hooks"
	"github.com/1broseidon/displayctl/internal/layout"
	"github.com/1broseidon/displayctl/internal/xrandr"
)

// ValidationError reports an invalid configuration value with its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// CommandsConfig configures the external configuration tool. A zero picker
// timeout means the prompt waits for the user indefinitely.
type CommandsConfig struct {
	Xrandr               string `yaml:"xrandr"`
	QueryTimeoutSeconds  int    `yaml:"query_timeout_seconds"`
	ApplyTimeoutSeconds  int    `yaml:"apply_timeout_seconds"`
	PickerTimeoutSeconds int    `yaml:"picker_timeout_seconds"`
}

// RolesConfig is the well-known output identity table.
type RolesConfig struct {
	Internal string   `yaml:"internal"`
	HDMI     string   `yaml:"hdmi"`
	Ports    []string `yaml:"ports"`
	Docked   []string `yaml:"docked"`
}

// HomeLayoutConfig names the two external outputs of the docking rig.
type HomeLayoutConfig struct {
	External string `yaml:"external"`
	Vertical string `yaml:"vertical"`
}

// PresetConfig is one named placement preset. An empty resolution means
// automatic mode.
type PresetConfig struct {
	Name       string `yaml:"name"`
	Relation   string `yaml:"relation"`
	Resolution string `yaml:"resolution,omitempty"`
}

// HooksConfig toggles the post-apply hook groups.
type HooksConfig struct {
	WindowManager bool `yaml:"window_manager"`
	Wallpaper     bool `yaml:"wallpaper"`
	Dunst         bool `yaml:"dunst"`
	Screensaver   bool `yaml:"screensaver"`
}

// Config is the effective displayctl configuration.
type Config struct {
	LogLevel          string           `yaml:"log_level"`
	PickerBackend     string           `yaml:"picker_backend"`
	Commands          CommandsConfig   `yaml:"commands"`
	Roles             RolesConfig      `yaml:"roles"`
	HomeLayout        HomeLayoutConfig `yaml:"home_layout"`
	PresentResolution string           `yaml:"present_resolution"`
	Presets           []PresetConfig   `yaml:"presets"`
	Hooks             HooksConfig      `yaml:"hooks"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		PickerBackend: "auto",
		Commands: CommandsConfig{
			Xrandr:              "xrandr",
			QueryTimeoutSeconds: 10,
			ApplyTimeoutSeconds: 30,
		},
		Roles: RolesConfig{
			Internal: "eDP-1",
			HDMI:     "HDMI-1",
			Ports:    []string{"DP-1", "DP-2", "DP-3", "DP-4"},
			Docked:   []string{"DP-1-1", "DP-1-2", "DP-1-3"},
		},
		HomeLayout:        HomeLayoutConfig{External: "DP-2", Vertical: "DP-1-2"},
		PresentResolution: "1920x1080",
		Presets: []PresetConfig{
			{Name: "left", Relation: "left-of"},
			{Name: "above", Relation: "above"},
			{Name: "left fullhd", Relation: "left-of", Resolution: "1920x1080"},
			{Name: "right", Relation: "right-of"},
			{Name: "same", Relation: "same-as"},
		},
		Hooks: HooksConfig{
			WindowManager: true,
			Wallpaper:     true,
			Dunst:         true,
			Screensaver:   true,
		},
	}
}

var resolutionRe = regexp.MustCompile(`^[0-9]+x[0-9]+$`)

// Validate checks the configuration for values the rest of the program
// cannot work with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch c.PickerBackend {
	case "auto", "rofi", "dmenu":
	default:
		return &ValidationError{Path: "picker_backend", Err: fmt.Errorf("picker_backend must be one of: auto, rofi, dmenu")}
	}
	if c.Commands.Xrandr == "" {
		return &ValidationError{Path: "commands.xrandr", Err: fmt.Errorf("command must not be empty")}
	}
	if c.Commands.QueryTimeoutSeconds < 0 || c.Commands.ApplyTimeoutSeconds < 0 || c.Commands.PickerTimeoutSeconds < 0 {
		return &ValidationError{Path: "commands", Err: fmt.Errorf("timeouts must be >= 0")}
	}
	if c.Roles.Internal == "" {
		return &ValidationError{Path: "roles.internal", Err: fmt.Errorf("internal output identity is required")}
	}
	if c.HomeLayout.External == "" || c.HomeLayout.Vertical == "" {
		return &ValidationError{Path: "home_layout", Err: fmt.Errorf("external and vertical identities are required")}
	}
	if !resolutionRe.MatchString(c.PresentResolution) {
		return &ValidationError{Path: "present_resolution", Err: fmt.Errorf("resolution must look like 1920x1080")}
	}
	if len(c.Presets) == 0 {
		return &ValidationError{Path: "presets", Err: fmt.Errorf("at least one preset is required")}
	}
	for i, p := range c.Presets {
		path := fmt.Sprintf("presets[%d]", i)
		if p.Name == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("name must not be empty")}
		}
		if !layout.Relation(p.Relation).Valid() {
			return &ValidationError{Path: path + ".relation", Err: fmt.Errorf("relation must be one of: left-of, above, right-of, same-as")}
		}
		if p.Resolution != "" && !resolutionRe.MatchString(p.Resolution) {
			return &ValidationError{Path: path + ".resolution", Err: fmt.Errorf("resolution must look like 1920x1080")}
		}
	}
	return nil
}

// RoleTable converts the role section into the display package's table.
func (c *Config) RoleTable() display.Table {
	return display.Table{
		Internal: c.Roles.Internal,
		HDMI:     c.Roles.HDMI,
		Ports:    c.Roles.Ports,
		Docked:   c.Roles.Docked,
	}
}

// LayoutPresets converts the preset section into layout presets.
func (c *Config) LayoutPresets() []layout.Preset {
	presets := make([]layout.Preset, 0, len(c.Presets))
	for _, p := range c.Presets {
		mode := layout.Auto()
		if p.Resolution != "" {
			mode = layout.Fixed(p.Resolution)
		}
		presets = append(presets, layout.Preset{
			Name:     p.Name,
			Relation: layout.Relation(p.Relation),
			Mode:     mode,
		})
	}
	return presets
}

// Resolver builds the layout resolver described by this configuration.
func (c *Config) Resolver() *layout.Resolver {
	return &layout.Resolver{
		Table: c.RoleTable(),
		Home: layout.HomeLayout{
			External: c.HomeLayout.External,
			Vertical: c.HomeLayout.Vertical,
		},
		PresentResolution: c.PresentResolution,
	}
}

// XrandrOptions converts the commands section into xrandr client options.
func (c *Config) XrandrOptions() xrandr.Options {
	return xrandr.Options{
		Command:      c.Commands.Xrandr,
		QueryTimeout: time.Duration(c.Commands.QueryTimeoutSeconds) * time.Second,
		ApplyTimeout: time.Duration(c.Commands.ApplyTimeoutSeconds) * time.Second,
	}
}

// PickerTimeout returns the bounded wait for interactive prompts, zero for
// an unlimited wait.
func (c *Config) PickerTimeout() time.Duration {
	return time.Duration(c.Commands.PickerTimeoutSeconds) * time.Second
}

// HookConfig converts the hooks section into the hooks package's toggles.
func (c *Config) HookConfig() hooks.Config {
	return hooks.Config{
		WindowManager: c.Hooks.WindowManager,
		Wallpaper:     c.Hooks.Wallpaper,
		Dunst:         c.Hooks.Dunst,
		Screensaver:   c.Hooks.Screensaver,
	}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to the given path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
