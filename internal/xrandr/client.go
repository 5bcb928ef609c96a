// Package xrandr drives the external display-configuration tool: verbose
// inventory queries and one-shot layout application.
package xrandr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/layout"
	"github.com/1broseidon/displayctl/internal/logging"
)

const (
	defaultCommand      = "xrandr"
	defaultQueryTimeout = 10 * time.Second
	defaultApplyTimeout = 30 * time.Second
)

// QueryError reports that the output inventory could not be obtained or that
// the report was malformed.
type QueryError struct {
	Reason string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("querying outputs: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("querying outputs: %s", e.Reason)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ApplyError reports that the configuration tool rejected a batch.
type ApplyError struct {
	Stderr string
	Err    error
}

func (e *ApplyError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("applying layout: %s", msg)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Client queries connected outputs and applies layout batches.
type Client interface {
	// Query returns the connected outputs in report order.
	Query(ctx context.Context) ([]display.Output, error)
	// Apply issues one invocation covering the whole batch. A non-empty
	// warning means the tool accepted the batch but wrote diagnostics.
	Apply(ctx context.Context, batch layout.Batch) (warning string, err error)
}

type runner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// Options tune the command client. Zero values select the defaults.
type Options struct {
	Command      string
	QueryTimeout time.Duration
	ApplyTimeout time.Duration
}

// CommandClient implements Client by running the xrandr binary.
type CommandClient struct {
	cmd          string
	table        display.Table
	queryTimeout time.Duration
	applyTimeout time.Duration
	log          logging.Logger
	run          runner
}

// NewCommandClient returns a client classifying outputs against the given
// role table.
func NewCommandClient(table display.Table, opts Options, log logging.Logger) *CommandClient {
	c := &CommandClient{
		cmd:          opts.Command,
		table:        table,
		queryTimeout: opts.QueryTimeout,
		applyTimeout: opts.ApplyTimeout,
		log:          log,
		run:          runCommand,
	}
	if c.cmd == "" {
		c.cmd = defaultCommand
	}
	if c.queryTimeout <= 0 {
		c.queryTimeout = defaultQueryTimeout
	}
	if c.applyTimeout <= 0 {
		c.applyTimeout = defaultApplyTimeout
	}
	if c.log == nil {
		c.log = logging.Noop{}
	}
	return c
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Query runs the tool in verbose mode and parses the report. Connected
// outputs are returned in report order; disconnected ones are dropped.
func (c *CommandClient) Query(ctx context.Context) ([]display.Output, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, c.cmd, "--verbose")
	if err != nil {
		return nil, &QueryError{
			Reason: fmt.Sprintf("%s --verbose failed: %s", c.cmd, strings.TrimSpace(stderr)),
			Err:    err,
		}
	}

	all, err := ParseVerbose(stdout, c.table)
	if err != nil {
		return nil, err
	}
	var connected []display.Output
	for _, o := range all {
		if o.Connected {
			connected = append(connected, o)
		}
	}
	c.log.Debug("queried outputs", "connected", len(connected), "total", len(all))
	return connected, nil
}

// Apply renders the batch into the tool's flag grammar and issues one
// invocation. An empty batch issues nothing and succeeds. Atomicity across
// the batch is delegated to the tool.
func (c *CommandClient) Apply(ctx context.Context, batch layout.Batch) (string, error) {
	if len(batch) == 0 {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.applyTimeout)
	defer cancel()

	args := BuildArgs(batch)
	c.log.Debug("applying layout", "args", strings.Join(args, " "))
	_, stderr, err := c.run(ctx, c.cmd, args...)
	if err != nil {
		return "", &ApplyError{Stderr: stderr, Err: err}
	}
	return strings.TrimSpace(stderr), nil
}

// BuildArgs renders a batch into xrandr's flag grammar: repeated
// "--output <id> [relation <ref>] [mode] [--rotate <dir>]" groups.
func BuildArgs(batch layout.Batch) []string {
	var args []string
	for _, op := range batch {
		args = append(args, "--output", op.Output)
		if op.Relation != "" {
			args = append(args, "--"+string(op.Relation), op.Ref)
		}
		switch {
		case op.Mode.Off:
			args = append(args, "--off")
		case op.Mode.Resolution != "":
			args = append(args, "--mode", op.Mode.Resolution)
		default:
			args = append(args, "--auto")
		}
		if op.Rotate != "" {
			args = append(args, "--rotate", op.Rotate)
		}
	}
	return args
}
