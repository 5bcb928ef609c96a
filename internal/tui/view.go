package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/displayctl/internal/config"
	"github.com/1broseidon/displayctl/internal/ipc"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(24).
			Align(lipgloss.Right).
			PaddingRight(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)
)

// renderStatusBar renders the listener connection status bar.
func renderStatusBar(connected bool, sessionState, lastSelection string, outputCount int, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " listener running"}
		if sessionState != "" {
			parts = append(parts, "picker:"+sessionState)
		}
		if lastSelection != "" {
			parts = append(parts, "last:"+lastSelection)
		}
		parts = append(parts, fmt.Sprintf("outputs:%d", outputCount))
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " listener not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderHelpBar renders the bottom keybinding bar.
func renderHelpBar(editing bool, width int) string {
	help := "e: edit  r: reload  q/esc: quit"
	if editing {
		help = "enter: next field  esc: cancel  ctrl-c: quit"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func renderSettings(cfg *config.Config, outputs []ipc.OutputInfo, lastError, flash string, width, height int) string {
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(width).
			Height(height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	timeouts := fmt.Sprintf("query:%ds apply:%ds",
		cfg.Commands.QueryTimeoutSeconds, cfg.Commands.ApplyTimeoutSeconds)
	home := cfg.HomeLayout.External + " docked:" + cfg.HomeLayout.Vertical

	presets := make([]string, 0, len(cfg.Presets))
	for _, p := range cfg.Presets {
		presets = append(presets, p.Name)
	}

	hooks := []string{}
	if cfg.Hooks.WindowManager {
		hooks = append(hooks, "wm")
	}
	if cfg.Hooks.Wallpaper {
		hooks = append(hooks, "wallpaper")
	}
	if cfg.Hooks.Dunst {
		hooks = append(hooks, "dunst")
	}
	if cfg.Hooks.Screensaver {
		hooks = append(hooks, "screensaver")
	}
	hooksValue := "(none)"
	if len(hooks) > 0 {
		hooksValue = strings.Join(hooks, ", ")
	}

	lines := []string{
		"",
		row("Log Level", cfg.LogLevel),
		row("Picker Backend", cfg.PickerBackend),
		row("xrandr Command", cfg.Commands.Xrandr),
		row("Timeouts", timeouts),
		"",
		row("Internal Output", cfg.Roles.Internal),
		row("HDMI Output", displayOrDefault(cfg.Roles.HDMI, "(none)")),
		row("DisplayPort Outputs", strings.Join(cfg.Roles.Ports, ", ")),
		row("Docked Outputs", strings.Join(cfg.Roles.Docked, ", ")),
		"",
		row("Home Layout", home),
		row("Present Resolution", cfg.PresentResolution),
		row("Presets", strings.Join(presets, ", ")),
		row("Hooks", hooksValue),
	}

	if len(outputs) > 0 {
		lines = append(lines, "", headerStyle.Render("  Connected Outputs"))
		for _, o := range outputs {
			desc := o.Name + " (" + o.Label + ")"
			if o.Model != "" {
				desc += "  " + o.Model
			}
			lines = append(lines, row(o.Role, desc))
		}
	}

	switch {
	case lastError != "":
		lines = append(lines, "", errorStyle.Render("  Error: "+lastError))
	case flash != "":
		lines = append(lines, "", flashStyle.Render("  "+flash))
	default:
		lines = append(lines, "", dimStyle.Render("  Press 'e' to edit settings"))
	}

	content := strings.Join(lines, "\n")

	contentStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)

	return contentStyle.Render(content)
}

func renderForm(form *huh.Form, width, height int) string {
	header := headerStyle.Render("Editing Settings") +
		dimStyle.Render("  (esc to cancel)")

	content := header + "\n\n" + form.View()

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)

	return style.Render(content)
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
