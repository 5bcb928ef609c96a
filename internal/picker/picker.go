// Package picker spawns the interactive menu program and maps its exit
// status onto selection, cancellation, or failure.
package picker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user dismisses the picker, when it dies
// to a termination signal, or when the blank separator row is chosen.
var ErrCancelled = errors.New("picker cancelled")

// Error reports an abnormal picker exit other than cancellation.
type Error struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

func (e *Error) Unwrap() error { return e.Err }

// Backend spawns a picker process over a flat option list.
type Backend interface {
	// Launch starts the picker with the options fed newline-joined on
	// stdin. The returned invocation exposes the pid for session-marker
	// bookkeeping before the blocking Wait.
	Launch(ctx context.Context, prompt string, options []string) (*Invocation, error)
	// Command returns the program name, used for stale-marker detection.
	Command() string
}

// AutoDetect selects the first available backend in priority order.
func AutoDetect() (Backend, error) {
	name, err := DetectBackend()
	if err != nil {
		return nil, err
	}
	return NewBackend(name)
}

// NewBackend creates a backend by name.
//
// Supported names: auto, rofi, dmenu.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return AutoDetect()
	case "rofi":
		if _, err := exec.LookPath("rofi"); err != nil {
			return nil, fmt.Errorf("picker backend %q not found in PATH", "rofi")
		}
		return NewRofiBackend(), nil
	case "dmenu":
		if _, err := exec.LookPath("dmenu"); err != nil {
			return nil, fmt.Errorf("picker backend %q not found in PATH", "dmenu")
		}
		return NewDmenuBackend(), nil
	default:
		return nil, fmt.Errorf("unknown picker backend: %q (expected: auto, rofi, dmenu)", name)
	}
}
