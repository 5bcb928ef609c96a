package xrandr

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/1broseidon/displayctl/internal/display"
)

var (
	screenRe = regexp.MustCompile(`^Screen\s+\d+:`)
	outputRe = regexp.MustCompile(`^(\S+)\s+(connected|disconnected)\b`)
)

// ParseVerbose parses an `xrandr --verbose` report into outputs, connected
// and disconnected alike, in report order. The engine supports exactly one
// screen group; any other count is a fatal parse inconsistency.
func ParseVerbose(report string, table display.Table) ([]display.Output, error) {
	var (
		outputs []display.Output
		current *display.Output
		edid    strings.Builder
		inEDID  bool
		screens int
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Model = decodeEDIDModel(edid.String())
		outputs = append(outputs, *current)
		current = nil
		edid.Reset()
		inEDID = false
	}

	scanner := bufio.NewScanner(strings.NewReader(report))
	for scanner.Scan() {
		line := scanner.Text()

		if screenRe.MatchString(line) {
			screens++
			continue
		}
		if m := outputRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &display.Output{
				Name:      m[1],
				Role:      table.Classify(m[1]),
				Connected: m[2] == "connected",
			}
			continue
		}
		if current == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "EDID:") {
			inEDID = true
			edid.Reset()
			continue
		}
		if inEDID {
			if isHexLine(trimmed) {
				edid.WriteString(trimmed)
				continue
			}
			inEDID = false
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, &QueryError{Reason: "reading report", Err: err}
	}
	if screens != 1 {
		return nil, &QueryError{
			Reason: fmt.Sprintf("expected exactly one screen group, report has %d", screens),
		}
	}
	return outputs, nil
}

func isHexLine(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// decodeEDIDModel extracts the monitor name from an EDID block's display
// descriptors (tag 0xFC). Returns "" when the block is absent, truncated, or
// carries no name descriptor.
func decodeEDIDModel(hexBlock string) string {
	raw, err := hex.DecodeString(hexBlock)
	if err != nil || len(raw) < 128 {
		return ""
	}
	for _, off := range []int{54, 72, 90, 108} {
		d := raw[off : off+18]
		if d[0] != 0 || d[1] != 0 || d[2] != 0 || d[3] != 0xFC {
			continue
		}
		name := string(d[5:18])
		if i := strings.IndexByte(name, 0x0A); i >= 0 {
			name = name[:i]
		}
		return strings.TrimSpace(name)
	}
	return ""
}
