package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

type backendKind int

const (
	kindRofi backendKind = iota
	kindDmenu
)

type menuBackend struct {
	command string
	kind    backendKind
}

// NewRofiBackend returns the rofi dmenu-mode backend pinned to the primary
// monitor.
func NewRofiBackend() Backend {
	return &menuBackend{command: "rofi", kind: kindRofi}
}

// NewDmenuBackend returns the plain dmenu backend.
func NewDmenuBackend() Backend {
	return &menuBackend{command: "dmenu", kind: kindDmenu}
}

func (b *menuBackend) Command() string { return b.command }

func (b *menuBackend) buildArgs(prompt string) []string {
	switch b.kind {
	case kindRofi:
		args := []string{"-dmenu"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return append(args, "-m", "primary")
	default:
		var args []string
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}
}

func (b *menuBackend) Launch(ctx context.Context, prompt string, options []string) (*Invocation, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("picker: no options to show")
	}

	cmd := exec.CommandContext(ctx, b.command, b.buildArgs(prompt)...)
	cmd.Stdin = strings.NewReader(strings.Join(options, "\n"))

	inv := &Invocation{command: b.command, cmd: cmd}
	cmd.Stdout = &inv.stdout
	cmd.Stderr = &inv.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", b.command, err)
	}
	return inv, nil
}

// Invocation is one spawned picker process.
type Invocation struct {
	command string
	cmd     *exec.Cmd
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

// Pid of the picker process, valid once Launch returned.
func (inv *Invocation) Pid() int { return inv.cmd.Process.Pid }

// Wait blocks until the picker exits and returns the trimmed selection.
// Exit code 1, death by signal, and an empty selection all read as
// cancellation; any other non-zero exit is an *Error.
func (inv *Invocation) Wait() (string, error) {
	err := inv.cmd.Wait()
	selection := strings.TrimSpace(inv.stdout.String())

	if err != nil {
		if isCancelExit(err) {
			return "", ErrCancelled
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &Error{
			Command:  inv.command,
			ExitCode: code,
			Stderr:   strings.TrimSpace(inv.stderr.String()),
			Err:      err,
		}
	}

	if selection == "" {
		return "", ErrCancelled
	}
	return selection, nil
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if exitErr.ExitCode() == 1 {
		return true
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}
