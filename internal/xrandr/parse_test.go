package xrandr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/1broseidon/displayctl/internal/display"
)

func edidWithModel(model string) string {
	raw := make([]byte, 128)
	copy(raw, []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00})
	desc := raw[54:72]
	desc[3] = 0xFC
	name := append([]byte(model), 0x0A)
	for len(name) < 13 {
		name = append(name, 0x20)
	}
	copy(desc[5:], name[:13])
	return hex.EncodeToString(raw)
}

func edidLines(model string) string {
	full := edidWithModel(model)
	var b strings.Builder
	for i := 0; i < len(full); i += 32 {
		b.WriteString("\t\t" + full[i:i+32] + "\n")
	}
	return b.String()
}

func sampleReport() string {
	return "Screen 0: minimum 320 x 200, current 5120 x 1440, maximum 16384 x 16384\n" +
		"eDP-1 connected primary 2560x1440+2560+0 (0x47) normal (normal left inverted right x axis y axis) 310mm x 170mm\n" +
		"\tIdentifier: 0x42\n" +
		"\tTimestamp:  123456\n" +
		"DP-2 connected 2560x1440+0+0 (0x4a) normal (normal left inverted right x axis y axis) 600mm x 340mm\n" +
		"\tIdentifier: 0x45\n" +
		"\tEDID: \n" +
		edidLines("DELL U2715H") +
		"\tscaling mode: Full aspect \n" +
		"   2560x1440 (0x4a) 241.500MHz +HSync -VSync *current +preferred\n" +
		"        h: width  2560 start 2608 end 2640 total 2720 skew    0 clock 88.79KHz\n" +
		"HDMI-1 disconnected (normal left inverted right x axis y axis)\n" +
		"\tIdentifier: 0x46\n"
}

func TestParseVerbose_Report(t *testing.T) {
	outputs, err := ParseVerbose(sampleReport(), display.DefaultTable())
	if err != nil {
		t.Fatalf("ParseVerbose error: %v", err)
	}

	if len(outputs) != 3 {
		t.Fatalf("parsed %d outputs, want 3: %v", len(outputs), outputs)
	}

	edp := outputs[0]
	if edp.Name != "eDP-1" || !edp.Connected || edp.Role.Kind != display.RoleInternal {
		t.Fatalf("first output = %+v, want connected internal eDP-1", edp)
	}

	dp2 := outputs[1]
	if dp2.Name != "DP-2" || !dp2.Connected || dp2.Role.Kind != display.RoleDisplayPort {
		t.Fatalf("second output = %+v, want connected DP-2", dp2)
	}
	if dp2.Model != "DELL U2715H" {
		t.Fatalf("DP-2 model = %q, want DELL U2715H", dp2.Model)
	}

	hdmi := outputs[2]
	if hdmi.Name != "HDMI-1" || hdmi.Connected {
		t.Fatalf("third output = %+v, want disconnected HDMI-1", hdmi)
	}
}

func TestParseVerbose_UnknownOutputRetained(t *testing.T) {
	report := "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 16384 x 16384\n" +
		"VGA-1 connected 1920x1080+0+0 (0x11) normal (normal) 520mm x 290mm\n"

	outputs, err := ParseVerbose(report, display.DefaultTable())
	if err != nil {
		t.Fatalf("ParseVerbose error: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("parsed %d outputs, want 1", len(outputs))
	}
	if outputs[0].Role.Kind != display.RoleUnknown || outputs[0].Name != "VGA-1" {
		t.Fatalf("unknown output not retained: %+v", outputs[0])
	}
}

func TestParseVerbose_ScreenGroupCount(t *testing.T) {
	table := display.DefaultTable()

	tests := []struct {
		desc    string
		screens int
	}{
		{"no screen group", 0},
		{"two screen groups", 2},
	}
	for _, tt := range tests {
		var b strings.Builder
		for i := 0; i < tt.screens; i++ {
			fmt.Fprintf(&b, "Screen %d: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n", i)
		}
		b.WriteString("eDP-1 connected 1920x1080+0+0 (0x47) normal (normal) 310mm x 170mm\n")

		_, err := ParseVerbose(b.String(), table)
		if err == nil {
			t.Errorf("%s: expected error", tt.desc)
			continue
		}
		var qe *QueryError
		if !errors.As(err, &qe) {
			t.Errorf("%s: error type %T, want *QueryError", tt.desc, err)
		}
	}
}

func TestDecodeEDIDModel_Edges(t *testing.T) {
	if got := decodeEDIDModel(""); got != "" {
		t.Fatalf("decodeEDIDModel(empty) = %q, want empty", got)
	}
	if got := decodeEDIDModel("00ff"); got != "" {
		t.Fatalf("decodeEDIDModel(truncated) = %q, want empty", got)
	}

	// A block without a 0xFC descriptor yields no model.
	raw := make([]byte, 128)
	if got := decodeEDIDModel(hex.EncodeToString(raw)); got != "" {
		t.Fatalf("decodeEDIDModel(no descriptor) = %q, want empty", got)
	}
}
