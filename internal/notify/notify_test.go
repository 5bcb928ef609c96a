package notify

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/displayctl/internal/logging"
)

type recordedCall struct {
	args []any
}

func newRecordingNotifier(err error) (*DBus, *[]recordedCall) {
	calls := &[]recordedCall{}
	n := &DBus{
		call: func(args ...any) error {
			*calls = append(*calls, recordedCall{args: args})
			return err
		},
		appName: "displayctl",
		log:     logging.Noop{},
	}
	return n, calls
}

func hintsOf(t *testing.T, c recordedCall) map[string]dbus.Variant {
	t.Helper()
	if len(c.args) != 8 {
		t.Fatalf("Notify call has %d args, want 8", len(c.args))
	}
	hints, ok := c.args[6].(map[string]dbus.Variant)
	if !ok {
		t.Fatalf("hints arg has type %T", c.args[6])
	}
	return hints
}

func TestNotify_ErrorUsesCriticalUrgency(t *testing.T) {
	n, calls := newRecordingNotifier(nil)

	n.Notify(LevelError, "", "xrandr exited with status 1")

	if len(*calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(*calls))
	}
	call := (*calls)[0]
	if got := call.args[3]; got != "Screen Configuration Error" {
		t.Fatalf("summary = %v, want error title", got)
	}
	hints := hintsOf(t, call)
	if urgency := hints["urgency"].Value(); urgency != byte(2) {
		t.Fatalf("urgency = %v, want 2", urgency)
	}
	if call.args[2] != "dialog-error" {
		t.Fatalf("icon = %v, want dialog-error", call.args[2])
	}
}

func TestNotify_InfoIsTransientLowUrgency(t *testing.T) {
	n, calls := newRecordingNotifier(nil)

	n.Notify(LevelInfo, "Layout Applied", "home")

	hints := hintsOf(t, (*calls)[0])
	if urgency := hints["urgency"].Value(); urgency != byte(0) {
		t.Fatalf("urgency = %v, want 0", urgency)
	}
	if _, ok := hints["transient"]; !ok {
		t.Fatal("info notifications should carry the transient hint")
	}
}

func TestNotify_WarningKeepsCallerSummary(t *testing.T) {
	n, calls := newRecordingNotifier(nil)

	n.Notify(LevelWarning, "xrandr warning", "output DP-3 has no modes")

	call := (*calls)[0]
	if call.args[3] != "xrandr warning" {
		t.Fatalf("summary = %v", call.args[3])
	}
	hints := hintsOf(t, call)
	if urgency := hints["urgency"].Value(); urgency != byte(1) {
		t.Fatalf("urgency = %v, want 1", urgency)
	}
}

func TestNotify_DeliveryFailureIsSwallowed(t *testing.T) {
	n, _ := newRecordingNotifier(errors.New("bus gone"))

	// Must not panic or propagate.
	n.Notify(LevelError, "", "boom")
}

func TestErrorf_FormatsBody(t *testing.T) {
	n, calls := newRecordingNotifier(nil)

	Errorf(n, "cannot resolve layout for %d outputs", 3)

	call := (*calls)[0]
	if call.args[4] != "cannot resolve layout for 3 outputs" {
		t.Fatalf("body = %v", call.args[4])
	}
}
