package tui

import (
	"reflect"
	"testing"

	"github.com/1broseidon/displayctl/internal/config"
)

func TestSplitIdentities(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"DP-1", []string{"DP-1"}},
		{"DP-1, DP-2", []string{"DP-1", "DP-2"}},
		{"  DP-1 ,, DP-2  ,", []string{"DP-1", "DP-2"}},
	}
	for _, tt := range tests {
		got := splitIdentities(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitIdentities(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormFieldsRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	fields := newFormFields(cfg)

	out := config.DefaultConfig()
	fields.apply(out)

	if !reflect.DeepEqual(out, cfg) {
		t.Errorf("unedited form changed the config:\n got %+v\nwant %+v", out, cfg)
	}
}

func TestFormFieldsApply(t *testing.T) {
	cfg := config.DefaultConfig()
	fields := newFormFields(cfg)

	fields.logLevel = "debug"
	fields.pickerBackend = "dmenu"
	fields.queryTimeout = " 5 "
	fields.applyTimeout = "bogus"
	fields.rolePorts = "DP-7, DP-8"
	fields.presentResolution = "2560x1440"
	fields.hookDunst = false

	fields.apply(cfg)

	if cfg.LogLevel != "debug" || cfg.PickerBackend != "dmenu" {
		t.Errorf("log/backend = %q/%q, want debug/dmenu", cfg.LogLevel, cfg.PickerBackend)
	}
	if cfg.Commands.QueryTimeoutSeconds != 5 {
		t.Errorf("query timeout = %d, want 5", cfg.Commands.QueryTimeoutSeconds)
	}
	if cfg.Commands.ApplyTimeoutSeconds != 30 {
		t.Errorf("unparseable apply timeout changed the value: %d", cfg.Commands.ApplyTimeoutSeconds)
	}
	if want := []string{"DP-7", "DP-8"}; !reflect.DeepEqual(cfg.Roles.Ports, want) {
		t.Errorf("ports = %v, want %v", cfg.Roles.Ports, want)
	}
	if cfg.PresentResolution != "2560x1440" {
		t.Errorf("resolution = %q, want 2560x1440", cfg.PresentResolution)
	}
	if cfg.Hooks.Dunst {
		t.Error("dunst hook should be disabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("edited config should validate: %v", err)
	}
}
