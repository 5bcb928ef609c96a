package mcp

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/ipc"
	"github.com/1broseidon/displayctl/internal/layout"
	"github.com/1broseidon/displayctl/internal/session"
)

type fakeEngine struct {
	outputs  []display.Output
	queryErr error
	applyErr error
	state    session.State
	last     string

	applied [][2]string
}

func (f *fakeEngine) Outputs(ctx context.Context) ([]display.Output, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.outputs, nil
}

func (f *fakeEngine) ApplyScenario(ctx context.Context, selection, preset string) error {
	f.applied = append(f.applied, [2]string{selection, preset})
	return f.applyErr
}

func (f *fakeEngine) SessionState() session.State { return f.state }

func (f *fakeEngine) LastSelection() string { return f.last }

// fakeDaemon stands in for a reachable listener daemon.
type fakeDaemon struct {
	up        bool
	status    *ipc.StatusData
	statusErr error
	applyErr  error

	applied [][2]string
}

func (f *fakeDaemon) Ping() bool { return f.up }

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return f.status, f.statusErr
}

func (f *fakeDaemon) Apply(selection, preset string) error {
	f.applied = append(f.applied, [2]string{selection, preset})
	return f.applyErr
}

func connected(name string) display.Output {
	return display.Output{
		Name:      name,
		Role:      display.DefaultTable().Classify(name),
		Connected: true,
	}
}

// newTestServer builds a server with no listener daemon; tests that need one
// assign s.daemon themselves.
func newTestServer(eng Engine) *Server {
	s := NewServer(eng, layout.DefaultPresets(), nil)
	s.daemon = nil
	return s
}

func TestHandleListOutputs(t *testing.T) {
	eng := &fakeEngine{
		outputs: []display.Output{connected("eDP-1"), connected("HDMI-1")},
	}
	s := newTestServer(eng)

	_, out, err := s.handleListOutputs(context.Background(), nil, ListOutputsInput{})
	if err != nil {
		t.Fatalf("handleListOutputs: %v", err)
	}

	wantSelections := []string{"internal", "home", "home-present", "present", "hdmi"}
	if !reflect.DeepEqual(out.Selections, wantSelections) {
		t.Errorf("selections = %v, want %v", out.Selections, wantSelections)
	}
	wantPresets := []string{"left", "above", "left fullhd", "right", "same"}
	if !reflect.DeepEqual(out.Presets, wantPresets) {
		t.Errorf("presets = %v, want %v", out.Presets, wantPresets)
	}
	if len(out.Outputs) != 2 {
		t.Fatalf("got %d outputs, want 2", len(out.Outputs))
	}
	if !out.Outputs[0].Internal || out.Outputs[0].Label != "internal" {
		t.Errorf("first output = %+v, want the internal panel", out.Outputs[0])
	}
	if out.Outputs[1].Internal || out.Outputs[1].Label != "hdmi" {
		t.Errorf("second output = %+v, want the hdmi external", out.Outputs[1])
	}
}

func TestHandleListOutputs_InternalOnly(t *testing.T) {
	eng := &fakeEngine{outputs: []display.Output{connected("eDP-1")}}
	s := newTestServer(eng)

	_, out, err := s.handleListOutputs(context.Background(), nil, ListOutputsInput{})
	if err != nil {
		t.Fatalf("handleListOutputs: %v", err)
	}

	want := []string{"internal"}
	if !reflect.DeepEqual(out.Selections, want) {
		t.Errorf("selections = %v, want %v", out.Selections, want)
	}
}

func TestHandleListOutputs_QueryError(t *testing.T) {
	eng := &fakeEngine{queryErr: errors.New("xrandr missing")}
	s := newTestServer(eng)

	_, _, err := s.handleListOutputs(context.Background(), nil, ListOutputsInput{})
	if err == nil {
		t.Fatal("expected error from handleListOutputs")
	}
	if !strings.Contains(err.Error(), "xrandr missing") {
		t.Errorf("error %q does not mention the cause", err)
	}
}

func TestHandleApplyLayout(t *testing.T) {
	eng := &fakeEngine{}
	s := newTestServer(eng)

	_, out, err := s.handleApplyLayout(context.Background(), nil, ApplyLayoutInput{
		Selection: "home",
		Preset:    "left",
	})
	if err != nil {
		t.Fatalf("handleApplyLayout: %v", err)
	}

	if !out.Applied || out.Selection != "home" || out.Preset != "left" {
		t.Errorf("output = %+v, want applied home/left", out)
	}
	want := [][2]string{{"home", "left"}}
	if !reflect.DeepEqual(eng.applied, want) {
		t.Errorf("applied calls = %v, want %v", eng.applied, want)
	}
}

func TestHandleApplyLayout_TrimsSelection(t *testing.T) {
	eng := &fakeEngine{}
	s := newTestServer(eng)

	_, _, err := s.handleApplyLayout(context.Background(), nil, ApplyLayoutInput{
		Selection: "  internal  ",
	})
	if err != nil {
		t.Fatalf("handleApplyLayout: %v", err)
	}
	if len(eng.applied) != 1 || eng.applied[0][0] != "internal" {
		t.Errorf("applied calls = %v, want trimmed internal", eng.applied)
	}
}

func TestHandleApplyLayout_PrefersDaemon(t *testing.T) {
	eng := &fakeEngine{}
	s := newTestServer(eng)
	daemon := &fakeDaemon{up: true}
	s.daemon = daemon

	_, out, err := s.handleApplyLayout(context.Background(), nil, ApplyLayoutInput{
		Selection: "present",
		Preset:    "right",
	})
	if err != nil {
		t.Fatalf("handleApplyLayout: %v", err)
	}

	if !out.Applied {
		t.Errorf("output = %+v, want applied", out)
	}
	want := [][2]string{{"present", "right"}}
	if !reflect.DeepEqual(daemon.applied, want) {
		t.Errorf("daemon apply calls = %v, want %v", daemon.applied, want)
	}
	if len(eng.applied) != 0 {
		t.Errorf("engine apply calls = %v, want none while the daemon is up", eng.applied)
	}
}

func TestHandleApplyLayout_EmptySelection(t *testing.T) {
	eng := &fakeEngine{}
	s := newTestServer(eng)

	_, _, err := s.handleApplyLayout(context.Background(), nil, ApplyLayoutInput{})
	if err == nil {
		t.Fatal("expected error for empty selection")
	}
	if len(eng.applied) != 0 {
		t.Error("engine should not be called for an empty selection")
	}
}

func TestHandleApplyLayout_EngineError(t *testing.T) {
	eng := &fakeEngine{applyErr: errors.New("unknown preset \"diagonal\"")}
	s := newTestServer(eng)

	_, _, err := s.handleApplyLayout(context.Background(), nil, ApplyLayoutInput{
		Selection: "present",
		Preset:    "diagonal",
	})
	if err == nil {
		t.Fatal("expected error from handleApplyLayout")
	}
	if !strings.Contains(err.Error(), "diagonal") {
		t.Errorf("error %q does not mention the preset", err)
	}
}

func TestHandleGetStatus(t *testing.T) {
	eng := &fakeEngine{
		outputs: []display.Output{connected("eDP-1"), connected("DP-2")},
		state:   session.StateActive,
		last:    "hdmi",
	}
	s := newTestServer(eng)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("handleGetStatus: %v", err)
	}

	if out.ListenerRunning {
		t.Error("expected listener_running false without a daemon")
	}
	if out.SessionState != "active" {
		t.Errorf("session state = %q, want %q", out.SessionState, "active")
	}
	if out.LastSelection != "hdmi" {
		t.Errorf("last selection = %q, want %q", out.LastSelection, "hdmi")
	}
	if out.ConnectedCount != 2 {
		t.Errorf("connected count = %d, want 2", out.ConnectedCount)
	}
}

func TestHandleGetStatus_DaemonReachable(t *testing.T) {
	eng := &fakeEngine{
		outputs: []display.Output{connected("eDP-1")},
		state:   session.StateIdle,
	}
	s := newTestServer(eng)
	s.daemon = &fakeDaemon{
		up:     true,
		status: &ipc.StatusData{SessionState: "active", LastSelection: "home"},
	}

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("handleGetStatus: %v", err)
	}

	if !out.ListenerRunning {
		t.Error("expected listener_running true")
	}
	if out.SessionState != "active" {
		t.Errorf("session state = %q, want the daemon's %q", out.SessionState, "active")
	}
	if out.LastSelection != "home" {
		t.Errorf("last selection = %q, want the daemon's %q", out.LastSelection, "home")
	}
}

func TestHandleGetStatus_QueryFailure(t *testing.T) {
	eng := &fakeEngine{queryErr: errors.New("no display")}
	s := newTestServer(eng)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("handleGetStatus: %v", err)
	}
	if out.ConnectedCount != 0 {
		t.Errorf("connected count = %d, want 0", out.ConnectedCount)
	}
}
