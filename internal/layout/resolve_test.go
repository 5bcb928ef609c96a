package layout

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/displayctl/internal/display"
)

func connected(names ...string) []display.Output {
	table := display.DefaultTable()
	outputs := make([]display.Output, len(names))
	for i, name := range names {
		outputs[i] = display.Output{Name: name, Role: table.Classify(name), Connected: true}
	}
	return outputs
}

func newTestResolver() *Resolver {
	return NewResolver(display.DefaultTable())
}

func TestInternalOnly_OnlyInternalYieldsEmptyBatch(t *testing.T) {
	batch := newTestResolver().InternalOnly(connected("eDP-1"))

	if len(batch) != 0 {
		t.Fatalf("InternalOnly with only the internal panel = %v, want empty batch", batch)
	}
}

func TestInternalOnly_DisablesEveryExternal(t *testing.T) {
	batch := newTestResolver().InternalOnly(connected("eDP-1", "HDMI-1", "DP-2", "VGA-1"))

	want := Batch{
		{Output: "HDMI-1", Mode: Off()},
		{Output: "DP-2", Mode: Off()},
		{Output: "VGA-1", Mode: Off()},
	}
	if !reflect.DeepEqual(batch, want) {
		t.Fatalf("InternalOnly = %v, want %v", batch, want)
	}
}

func TestHomeDocked_FixedBatch(t *testing.T) {
	batch := newTestResolver().HomeDocked(false)

	want := Batch{
		{Output: "DP-2", Relation: LeftOf, Ref: "eDP-1", Mode: Auto()},
		{Output: "DP-1-2", Relation: LeftOf, Ref: "DP-2", Mode: Auto(), Rotate: "right"},
		{Output: "eDP-1", Mode: Auto()},
	}
	if !reflect.DeepEqual(batch, want) {
		t.Fatalf("HomeDocked(false) = %v, want %v", batch, want)
	}
}

func TestHomeDocked_PresentVariantForcesResolution(t *testing.T) {
	batch := newTestResolver().HomeDocked(true)

	if len(batch) != 3 {
		t.Fatalf("HomeDocked(true) has %d operations, want 3", len(batch))
	}
	if batch[0].Mode != Fixed("1920x1080") {
		t.Fatalf("external mode = %+v, want fixed 1920x1080", batch[0].Mode)
	}
	if !batch[1].Mode.IsAuto() || !batch[2].Mode.IsAuto() {
		t.Fatalf("remaining operations must stay automatic: %v", batch[1:])
	}
}

func TestAssignPresentation_OneDPWithHDMI(t *testing.T) {
	r := newTestResolver()

	// The assignment must not depend on report order.
	for _, names := range [][]string{
		{"eDP-1", "DP-2", "HDMI-1"},
		{"HDMI-1", "eDP-1", "DP-2"},
	} {
		a, err := r.AssignPresentation(connected(names...))
		if err != nil {
			t.Fatalf("AssignPresentation(%v) error: %v", names, err)
		}
		if a.Projector != "HDMI-1" || a.Mirror != "DP-2" {
			t.Fatalf("AssignPresentation(%v) = %+v, want projector=HDMI-1 mirror=DP-2", names, a)
		}
	}
}

func TestAssignPresentation_TwoDPNoHDMI_Deterministic(t *testing.T) {
	r := newTestResolver()

	for _, names := range [][]string{
		{"eDP-1", "DP-2", "DP-1-2"},
		{"eDP-1", "DP-1-2", "DP-2"},
	} {
		a, err := r.AssignPresentation(connected(names...))
		if err != nil {
			t.Fatalf("AssignPresentation(%v) error: %v", names, err)
		}
		// The docked output proxies as the projector, the plain one as the
		// mirror target.
		if a.Projector != "DP-1-2" || a.Mirror != "DP-2" {
			t.Fatalf("AssignPresentation(%v) = %+v, want projector=DP-1-2 mirror=DP-2", names, a)
		}
	}
}

func TestAssignPresentation_TwoPlainDPTieBreak(t *testing.T) {
	r := newTestResolver()

	first, err := r.AssignPresentation(connected("eDP-1", "DP-1", "DP-2"))
	if err != nil {
		t.Fatalf("AssignPresentation error: %v", err)
	}
	second, err := r.AssignPresentation(connected("eDP-1", "DP-2", "DP-1"))
	if err != nil {
		t.Fatalf("AssignPresentation error: %v", err)
	}
	if first != second {
		t.Fatalf("tie-break not deterministic: %+v vs %+v", first, second)
	}
}

func TestAssignPresentation_AmbiguousShapes(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		desc  string
		names []string
	}{
		{"no DP outputs", []string{"eDP-1", "HDMI-1"}},
		{"one DP without HDMI", []string{"eDP-1", "DP-2"}},
		{"two DP plus HDMI", []string{"eDP-1", "DP-2", "DP-1-2", "HDMI-1"}},
		{"three DP outputs", []string{"eDP-1", "DP-1", "DP-2", "DP-3"}},
	}
	for _, tt := range tests {
		_, err := r.AssignPresentation(connected(tt.names...))
		if err == nil {
			t.Errorf("%s: expected AmbiguousError", tt.desc)
			continue
		}
		var ambiguous *AmbiguousError
		if !errors.As(err, &ambiguous) {
			t.Errorf("%s: error type %T, want *AmbiguousError", tt.desc, err)
			continue
		}
		if len(ambiguous.Outputs) != len(tt.names) {
			t.Errorf("%s: error carries %d outputs, want %d", tt.desc, len(ambiguous.Outputs), len(tt.names))
		}
		for _, name := range tt.names {
			if !strings.Contains(ambiguous.Error(), name) {
				t.Errorf("%s: error text %q missing output %s", tt.desc, ambiguous.Error(), name)
			}
		}
	}
}

func TestPresentation_BatchShape(t *testing.T) {
	r := newTestResolver()

	a, err := r.AssignPresentation(connected("eDP-1", "HDMI-1", "DP-2"))
	if err != nil {
		t.Fatalf("AssignPresentation error: %v", err)
	}
	preset, ok := FindPreset(DefaultPresets(), "left")
	if !ok {
		t.Fatal("preset left missing")
	}

	batch := r.Presentation(a, preset)

	want := Batch{
		{Output: "DP-2", Relation: LeftOf, Ref: "eDP-1", Mode: Auto()},
		{Output: "HDMI-1", Relation: SameAs, Ref: "DP-2", Mode: Auto()},
	}
	if !reflect.DeepEqual(batch, want) {
		t.Fatalf("Presentation = %v, want %v", batch, want)
	}
}

func TestPresentation_PresetModeHonored(t *testing.T) {
	r := newTestResolver()
	preset, ok := FindPreset(DefaultPresets(), "left fullhd")
	if !ok {
		t.Fatal("preset left fullhd missing")
	}

	batch := r.Presentation(Assignment{Projector: "HDMI-1", Mirror: "DP-2"}, preset)

	if batch[0].Mode != Fixed("1920x1080") {
		t.Fatalf("mirror mode = %+v, want fixed 1920x1080", batch[0].Mode)
	}
	if !batch[1].Mode.IsAuto() {
		t.Fatalf("projector mode = %+v, want auto", batch[1].Mode)
	}
}

func TestAdHoc_ResolvesKnownSelections(t *testing.T) {
	r := newTestResolver()
	preset, _ := FindPreset(DefaultPresets(), "right")

	tests := []struct {
		selection string
		want      string
	}{
		{"dp2", "DP-2"},
		{"DP2", "DP-2"},
		{"dp-dock-2", "DP-1-2"},
		{"hdmi", "HDMI-1"},
	}
	for _, tt := range tests {
		batch := r.AdHoc(tt.selection, preset)
		if len(batch) != 1 {
			t.Fatalf("AdHoc(%q) has %d operations, want 1", tt.selection, len(batch))
		}
		op := batch[0]
		if op.Output != tt.want || op.Relation != RightOf || op.Ref != "eDP-1" {
			t.Errorf("AdHoc(%q) = %+v, want %s right-of eDP-1", tt.selection, op, tt.want)
		}
	}
}

func TestAdHoc_FallsBackToLiteralIdentity(t *testing.T) {
	r := newTestResolver()
	preset, _ := FindPreset(DefaultPresets(), "left")

	batch := r.AdHoc("VGA-1", preset)

	if len(batch) != 1 || batch[0].Output != "VGA-1" {
		t.Fatalf("AdHoc(VGA-1) = %v, want one operation on VGA-1", batch)
	}
}

func TestDefaultPresets_OrderAndLookup(t *testing.T) {
	presets := DefaultPresets()

	wantOrder := []string{"left", "above", "left fullhd", "right", "same"}
	if !reflect.DeepEqual(PresetNames(presets), wantOrder) {
		t.Fatalf("PresetNames = %v, want %v", PresetNames(presets), wantOrder)
	}

	if _, ok := FindPreset(presets, "sideways"); ok {
		t.Fatal("FindPreset(sideways) matched, want miss")
	}
	same, ok := FindPreset(presets, "same")
	if !ok || same.Relation != SameAs {
		t.Fatalf("FindPreset(same) = %+v ok=%v", same, ok)
	}
}
