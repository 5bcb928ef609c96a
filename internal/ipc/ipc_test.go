package ipc

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/session"
)

type fakeEngine struct {
	mu       sync.Mutex
	outputs  []display.Output
	queryErr error
	applyErr error
	state    session.State
	last     string

	applied []string
}

func (f *fakeEngine) Outputs(ctx context.Context) ([]display.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.outputs, nil
}

func (f *fakeEngine) ApplyScenario(ctx context.Context, selection, preset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, selection+"/"+preset)
	return f.applyErr
}

func (f *fakeEngine) SessionState() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeEngine) LastSelection() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeEngine) appliedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.applied...)
}

func connected(name string) display.Output {
	return display.Output{
		Name:      name,
		Role:      display.DefaultTable().Classify(name),
		Connected: true,
	}
}

// startTestServer runs a server on a socket under t.TempDir and returns a
// client wired to it.
func startTestServer(t *testing.T, eng Engine, listenerUp func() bool) *Client {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "displayctl.sock")
	srv := newServerAt(socketPath, eng, logging.Noop{}, listenerUp)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})

	return newClientAt(socketPath)
}

func TestGetStatus(t *testing.T) {
	eng := &fakeEngine{
		outputs: []display.Output{connected("eDP-1"), connected("HDMI-1")},
		state:   session.StateActive,
		last:    "home",
	}
	client := startTestServer(t, eng, func() bool { return true })

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}

	if !status.ListenerRunning {
		t.Error("expected listener_running true")
	}
	if status.SessionState != "active" {
		t.Errorf("session state = %q, want %q", status.SessionState, "active")
	}
	if status.LastSelection != "home" {
		t.Errorf("last selection = %q, want %q", status.LastSelection, "home")
	}
	if status.ConnectedCount != 2 {
		t.Errorf("connected count = %d, want 2", status.ConnectedCount)
	}
	if status.UptimeSeconds < 0 {
		t.Errorf("uptime = %d, want >= 0", status.UptimeSeconds)
	}
}

func TestGetStatus_QueryFailureReportsZeroOutputs(t *testing.T) {
	eng := &fakeEngine{queryErr: errors.New("xrandr exploded")}
	client := startTestServer(t, eng, nil)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}

	if status.ConnectedCount != 0 {
		t.Errorf("connected count = %d, want 0", status.ConnectedCount)
	}
	if status.ListenerRunning {
		t.Error("expected listener_running false when no probe is given")
	}
}

func TestGetOutputs(t *testing.T) {
	eng := &fakeEngine{
		outputs: []display.Output{connected("eDP-1"), connected("DP-2")},
	}
	eng.outputs[1].Model = "DELL U2720Q"
	client := startTestServer(t, eng, nil)

	data, err := client.GetOutputs()
	if err != nil {
		t.Fatalf("GetOutputs: %v", err)
	}

	if len(data.Outputs) != 2 {
		t.Fatalf("got %d outputs, want 2", len(data.Outputs))
	}
	if data.Outputs[0].Name != "eDP-1" || data.Outputs[0].Label != "internal" {
		t.Errorf("first output = %+v, want eDP-1/internal", data.Outputs[0])
	}
	if data.Outputs[1].Model != "DELL U2720Q" {
		t.Errorf("model = %q, want %q", data.Outputs[1].Model, "DELL U2720Q")
	}
}

func TestGetOutputs_QueryError(t *testing.T) {
	eng := &fakeEngine{queryErr: errors.New("no backend")}
	client := startTestServer(t, eng, nil)

	_, err := client.GetOutputs()
	if err == nil {
		t.Fatal("expected error from GetOutputs")
	}
	if !strings.Contains(err.Error(), "no backend") {
		t.Errorf("error %q does not mention the cause", err)
	}
}

func TestApply(t *testing.T) {
	eng := &fakeEngine{}
	client := startTestServer(t, eng, nil)

	if err := client.Apply("home", "left"); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	calls := eng.appliedCalls()
	if len(calls) != 1 || calls[0] != "home/left" {
		t.Errorf("apply calls = %v, want [home/left]", calls)
	}
}

func TestApply_EmptySelectionRejected(t *testing.T) {
	eng := &fakeEngine{}
	client := startTestServer(t, eng, nil)

	err := client.Apply("", "")
	if err == nil {
		t.Fatal("expected error for empty selection")
	}
	if len(eng.appliedCalls()) != 0 {
		t.Error("engine should not be called for an empty selection")
	}
}

func TestApply_EngineErrorSurfaced(t *testing.T) {
	eng := &fakeEngine{applyErr: errors.New("unsupported inventory")}
	client := startTestServer(t, eng, nil)

	err := client.Apply("present", "")
	if err == nil {
		t.Fatal("expected error from Apply")
	}
	if !strings.Contains(err.Error(), "unsupported inventory") {
		t.Errorf("error %q does not mention the cause", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	eng := &fakeEngine{}
	client := startTestServer(t, eng, nil)

	_, err := client.sendRequest(&Request{Command: CommandType("REWIND")})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error %q does not mention unknown command", err)
	}
}

func TestPing(t *testing.T) {
	eng := &fakeEngine{}
	client := startTestServer(t, eng, nil)

	if !client.Ping() {
		t.Error("Ping should succeed while the server is up")
	}

	dead := newClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if dead.Ping() {
		t.Error("Ping should fail without a server")
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	if _, err := ParseRequest([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed request")
	}
}
