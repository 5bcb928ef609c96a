// Package listener reacts to RandR hotplug events and drives the engine:
// losing every external output switches straight to the internal layout,
// anything else re-runs the interactive selection through a worker.
package listener

import (
	"context"
	"sort"
	"strings"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/notify"
)

// Applier is the engine surface the listener drives.
type Applier interface {
	Outputs(ctx context.Context) ([]display.Output, error)
	ApplyInternal(ctx context.Context) error
	RunInteractive(ctx context.Context) error
	TerminateSession() error
}

// Listener turns connectivity changes into engine runs. The interactive runs
// happen on a single worker goroutine that owns the picker session; the event
// side only terminates sessions and enqueues.
type Listener struct {
	engine   Applier
	notifier notify.Notifier
	log      logging.Logger

	// tasks carries "run an interactive cycle" tokens. Capacity one: a
	// pending token already means "re-read the world and prompt," so further
	// events while one is queued add nothing.
	tasks chan struct{}

	// lastSeen is the connected-output fingerprint from the previous event.
	// RandR also notifies for mode and CRTC changes caused by our own apply;
	// only a changed connected set is a hotplug.
	lastSeen string
}

// New builds a listener over the engine.
func New(engine Applier, notifier notify.Notifier, log logging.Logger) *Listener {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = logging.Noop{}
	}
	return &Listener{
		engine:   engine,
		notifier: notifier,
		log:      log,
		tasks:    make(chan struct{}, 1),
	}
}

func fingerprint(outputs []display.Output) string {
	names := display.Names(outputs)
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Prime records the current connected set so startup state does not read as
// a hotplug.
func (l *Listener) Prime(ctx context.Context) {
	outputs, err := l.engine.Outputs(ctx)
	if err != nil {
		l.log.Warn("initial output query failed", "error", err)
		return
	}
	l.lastSeen = fingerprint(outputs)
	l.log.Info("listening for output changes", "connected", display.Names(outputs))
}

// HandleChange processes one change notification. Errors are logged and
// surfaced as notifications; they never stop the event loop.
func (l *Listener) HandleChange(ctx context.Context) {
	outputs, err := l.engine.Outputs(ctx)
	if err != nil {
		l.log.Error("querying outputs failed", "error", err)
		notify.Errorf(l.notifier, "%v", err)
		return
	}

	fp := fingerprint(outputs)
	if fp == l.lastSeen {
		l.log.Debug("ignoring event without connectivity change")
		return
	}
	l.lastSeen = fp
	l.log.Info("output connectivity changed", "connected", display.Names(outputs))

	if display.OnlyInternal(outputs) {
		// No external outputs left: drop any open picker and fall back to
		// the internal panel without asking.
		if err := l.engine.TerminateSession(); err != nil {
			l.log.Warn("terminating picker session failed", "error", err)
		}
		if err := l.engine.ApplyInternal(ctx); err != nil {
			l.log.Error("applying internal layout failed", "error", err)
		}
		return
	}

	// Preempt a picker shown for the previous topology, then hand the new
	// interactive cycle to the worker.
	if err := l.engine.TerminateSession(); err != nil {
		l.log.Warn("terminating picker session failed", "error", err)
	}
	l.enqueue()
}

func (l *Listener) enqueue() {
	select {
	case l.tasks <- struct{}{}:
	default:
		// A token is already queued; that run will see the new state.
	}
}

// Worker runs queued interactive cycles until the context ends. It must be
// the only goroutine issuing prompts so session takeover stays one-way: the
// event side kills, the worker owns the replacement.
func (l *Listener) Worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.tasks:
			if err := l.engine.RunInteractive(ctx); err != nil {
				l.log.Error("interactive cycle failed", "error", err)
			}
		}
	}
}
