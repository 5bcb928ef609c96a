// Package engine wires inventory, layout resolution, the picker session and
// the xrandr apply step into the operations the commands expose.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/layout"
	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/notify"
	"github.com/1broseidon/displayctl/internal/picker"
	"github.com/1broseidon/displayctl/internal/session"
	"github.com/1broseidon/displayctl/internal/xrandr"
)

const (
	promptScreen = "screen"
	promptConfig = "config"
)

// HookRunner runs the post-apply desktop hooks. Satisfied by hooks.Runner.
type HookRunner interface {
	AfterApply(ctx context.Context, presentation bool)
}

// Deps carries the engine's collaborators. Log and Notifier fall back to
// no-ops, Presets to the built-in set. Picker may be nil for engines that
// only serve non-interactive calls. A zero PickerTimeout waits for the user
// indefinitely; an expired timeout resolves the prompt as cancellation.
type Deps struct {
	Xrandr        xrandr.Client
	Resolver      *layout.Resolver
	Presets       []layout.Preset
	Sessions      *session.Coordinator
	Picker        session.Picker
	PickerTimeout time.Duration
	Hooks         HookRunner
	Notifier      notify.Notifier
	Log           logging.Logger
}

// Engine executes the display change operations.
type Engine struct {
	xrandr        xrandr.Client
	resolver      *layout.Resolver
	presets       []layout.Preset
	sessions      *session.Coordinator
	picker        session.Picker
	pickerTimeout time.Duration
	hooks         HookRunner
	notifier      notify.Notifier
	log           logging.Logger

	mu            sync.Mutex
	lastSelection string
}

func New(d Deps) *Engine {
	if d.Log == nil {
		d.Log = logging.Noop{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.Noop{}
	}
	if len(d.Presets) == 0 {
		d.Presets = layout.DefaultPresets()
	}
	return &Engine{
		xrandr:        d.Xrandr,
		resolver:      d.Resolver,
		presets:       d.Presets,
		sessions:      d.Sessions,
		picker:        d.Picker,
		pickerTimeout: d.PickerTimeout,
		hooks:         d.Hooks,
		notifier:      d.Notifier,
		log:           d.Log,
	}
}

type backendPicker struct {
	b picker.Backend
}

func (p backendPicker) Launch(ctx context.Context, prompt string, options []string) (session.Invocation, error) {
	inv, err := p.b.Launch(ctx, prompt, options)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// WrapBackend adapts a picker backend to the session coordinator's picker
// interface.
func WrapBackend(b picker.Backend) session.Picker {
	return backendPicker{b: b}
}

// Outputs returns the connected outputs.
func (e *Engine) Outputs(ctx context.Context) ([]display.Output, error) {
	return e.xrandr.Query(ctx)
}

// SessionState reports the picker session lifecycle state.
func (e *Engine) SessionState() session.State {
	if e.sessions == nil {
		return session.StateIdle
	}
	return e.sessions.State()
}

// TerminateSession takes down a running picker session, if any.
func (e *Engine) TerminateSession() error {
	if e.sessions == nil {
		return nil
	}
	return e.sessions.TerminateCurrent()
}

// RunInteractive queries the inventory, prompts for a scenario and applies
// the outcome. Cancelling either prompt ends the run silently; every other
// failure is logged, shown as a notification and returned.
func (e *Engine) RunInteractive(ctx context.Context) error {
	err := e.runInteractive(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, picker.ErrCancelled) {
		e.log.Debug("selection cancelled")
		return nil
	}
	return e.fail(err)
}

func (e *Engine) runInteractive(ctx context.Context) error {
	outputs, err := e.xrandr.Query(ctx)
	if err != nil {
		return err
	}

	selection, err := e.prompt(ctx, promptScreen, e.menuOptions(outputs))
	if err != nil {
		return err
	}
	e.log.Debug("scenario selected", "selection", selection)

	var batch layout.Batch
	switch selection {
	case layout.SelectionInternal:
		batch = e.resolver.InternalOnly(outputs)
	case layout.SelectionHome:
		batch = e.resolver.HomeDocked(false)
	case layout.SelectionHomePresent:
		batch = e.resolver.HomeDocked(true)
	case layout.SelectionPresent:
		// The inventory shape is checked before the preset prompt so an
		// unsupported combination never costs the user a second dialog.
		assignment, err := e.resolver.AssignPresentation(outputs)
		if err != nil {
			return err
		}
		preset, err := e.promptPreset(ctx)
		if err != nil {
			return err
		}
		batch = e.resolver.Presentation(assignment, preset)
	default:
		preset, err := e.promptPreset(ctx)
		if err != nil {
			return err
		}
		batch = e.resolver.AdHoc(selection, preset)
	}

	return e.apply(ctx, selection, batch)
}

// ApplyScenario applies a scenario without prompting. presetName selects the
// placement preset where one is needed and defaults to the first preset.
// Errors are returned to the caller, not shown as notifications.
func (e *Engine) ApplyScenario(ctx context.Context, selection, presetName string) error {
	outputs, err := e.xrandr.Query(ctx)
	if err != nil {
		return err
	}

	preset := e.presets[0]
	if presetName != "" {
		p, ok := layout.FindPreset(e.presets, presetName)
		if !ok {
			return fmt.Errorf("unknown preset %q", presetName)
		}
		preset = p
	}

	var batch layout.Batch
	switch selection {
	case layout.SelectionInternal:
		batch = e.resolver.InternalOnly(outputs)
	case layout.SelectionHome:
		batch = e.resolver.HomeDocked(false)
	case layout.SelectionHomePresent:
		batch = e.resolver.HomeDocked(true)
	case layout.SelectionPresent:
		assignment, err := e.resolver.AssignPresentation(outputs)
		if err != nil {
			return err
		}
		batch = e.resolver.Presentation(assignment, preset)
	default:
		batch = e.resolver.AdHoc(selection, preset)
	}

	return e.apply(ctx, selection, batch)
}

// ApplyInternal switches to the internal-only layout. Used by the hotplug
// path when every external output is gone, so failures notify the user.
func (e *Engine) ApplyInternal(ctx context.Context) error {
	if err := e.ApplyScenario(ctx, layout.SelectionInternal, ""); err != nil {
		return e.fail(err)
	}
	return nil
}

// menuOptions builds the scenario menu: the internal fallback first, the
// composite scenarios and a blank separator when externals are present, then
// one entry per non-internal output.
func (e *Engine) menuOptions(outputs []display.Output) []string {
	options := []string{layout.SelectionInternal}
	if !display.OnlyInternal(outputs) {
		options = append(options,
			layout.SelectionHome, layout.SelectionHomePresent, layout.SelectionPresent, "")
	}
	for _, o := range outputs {
		if o.IsInternal() {
			continue
		}
		options = append(options, o.Label())
	}
	return options
}

func (e *Engine) prompt(ctx context.Context, prompt string, options []string) (string, error) {
	if e.picker == nil || e.sessions == nil {
		return "", errors.New("no picker backend configured")
	}
	// An expired context kills the picker, which reads as cancellation.
	if e.pickerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.pickerTimeout)
		defer cancel()
	}
	return e.sessions.Prompt(ctx, e.picker, prompt, options)
}

func (e *Engine) promptPreset(ctx context.Context) (layout.Preset, error) {
	selection, err := e.prompt(ctx, promptConfig, layout.PresetNames(e.presets))
	if err != nil {
		return layout.Preset{}, err
	}
	preset, ok := layout.FindPreset(e.presets, selection)
	if !ok {
		return layout.Preset{}, fmt.Errorf("unknown preset %q", selection)
	}
	return preset, nil
}

// apply issues the batch and runs the post-apply hooks. A zero-exit stderr
// from xrandr is surfaced as a warning notification but the change counts as
// applied.
func (e *Engine) apply(ctx context.Context, selection string, batch layout.Batch) error {
	presentation := layout.IsPresentation(selection)
	warning, err := e.xrandr.Apply(ctx, batch)
	if err != nil {
		return err
	}
	if warning != "" {
		e.log.Warn("xrandr reported warnings", "stderr", warning)
		e.notifier.Notify(notify.LevelWarning, "Screen Configuration Warning", warning)
	}
	if e.hooks != nil {
		e.hooks.AfterApply(ctx, presentation)
	}
	e.mu.Lock()
	e.lastSelection = selection
	e.mu.Unlock()
	e.log.Info("layout applied", "selection", selection, "operations", len(batch))
	return nil
}

// LastSelection returns the selection of the most recent successful apply in
// this process, or the empty string before the first one.
func (e *Engine) LastSelection() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSelection
}

func (e *Engine) fail(err error) error {
	e.log.Error("display change failed", "error", err)
	notify.Errorf(e.notifier, "%v", err)
	return err
}
