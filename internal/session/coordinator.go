package session

import (
	"context"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/1broseidon/displayctl/internal/logging"
)

// State of the coordinator's picker lifecycle.
type State int

const (
	StateIdle State = iota
	StateLaunching
	StateActive
	StateTerminating
)

func (s State) String() string {
	switch s {
	case StateLaunching:
		return "launching"
	case StateActive:
		return "active"
	case StateTerminating:
		return "terminating"
	default:
		return "idle"
	}
}

// Picker launches the interactive prompt process. Implemented by the picker
// package's backends.
type Picker interface {
	Launch(ctx context.Context, prompt string, options []string) (Invocation, error)
}

// Invocation is one running picker process.
type Invocation interface {
	// Pid of the spawned process, valid once Launch returned.
	Pid() int
	// Wait blocks until the process exits and returns the trimmed
	// selection. Cancellation surfaces as the picker package's sentinel,
	// not as a selection.
	Wait() (string, error)
}

// Coordinator owns the picker singleton lifecycle. Before a new session
// starts, a live competing picker recorded in the store is terminated and
// its marker released; a dead or mismatched holder is discarded without
// signaling.
//
// The store itself is last-writer-wins without locking. Two near-simultaneous
// takeovers can both pass the stale check before either claims, and a
// superseded session's release can drop its successor's marker. Known
// limitation of the marker protocol; the terminate-then-write ordering keeps
// the window small but does not close it.
type Coordinator struct {
	mu          sync.Mutex
	store       Store
	expectedCmd string
	state       State
	log         logging.Logger

	commandOf func(pid int) (string, bool)
	terminate func(pid int) error
}

// NewCoordinator returns a coordinator over the given store. expectedCmd is
// the picker program name used for stale-marker detection.
func NewCoordinator(store Store, expectedCmd string, log logging.Logger) *Coordinator {
	if log == nil {
		log = logging.Noop{}
	}
	return &Coordinator{
		store:       store,
		expectedCmd: filepath.Base(expectedCmd),
		log:         log,
		commandOf:   procCommand,
		terminate: func(pid int) error {
			return syscall.Kill(pid, syscall.SIGTERM)
		},
	}
}

// State returns the current lifecycle state. It is advisory: a concurrent
// TerminateCurrent may move it while a Prompt is still unwinding.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// TerminateCurrent takes down the picker session recorded in the store, if
// any. Used by the hotplug path to preempt an in-progress selection.
func (c *Coordinator) TerminateCurrent() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminateLocked()
}

func (c *Coordinator) terminateLocked() error {
	pid, ok, err := c.store.CurrentHolder()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	c.state = StateTerminating
	if cmd, alive := c.commandOf(pid); alive && cmd == c.expectedCmd {
		c.log.Debug("terminating live picker", "pid", pid)
		if err := c.terminate(pid); err != nil {
			// The process can exit between the liveness check and the
			// signal; that leaves nothing to terminate.
			c.log.Debug("signal failed", "pid", pid, "err", err)
		}
	} else {
		c.log.Debug("discarding stale marker", "pid", pid)
	}

	err = c.store.Release()
	c.state = StateIdle
	return err
}

// Prompt runs one singleton picker session end to end: terminate any
// competing session, launch, claim the marker, wait, release. The marker is
// released on every exit path of the invocation.
func (c *Coordinator) Prompt(ctx context.Context, p Picker, prompt string, options []string) (string, error) {
	c.mu.Lock()
	if err := c.terminateLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.state = StateLaunching
	c.mu.Unlock()

	inv, err := p.Launch(ctx, prompt, options)
	if err != nil {
		c.setState(StateIdle)
		return "", err
	}

	if err := c.store.Claim(inv.Pid()); err != nil {
		// The session runs unprotected when the marker cannot be written;
		// a later takeover then has nothing to signal.
		c.log.Warn("claiming session marker failed", "err", err)
	}
	c.setState(StateActive)
	defer func() {
		if err := c.store.Release(); err != nil {
			c.log.Warn("releasing session marker failed", "err", err)
		}
		c.setState(StateIdle)
	}()

	return inv.Wait()
}
