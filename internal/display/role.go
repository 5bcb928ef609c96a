package display

import (
	"fmt"
	"strings"
)

// DPPrefix marks DisplayPort identities as reported by the display system.
const DPPrefix = "DP"

// RoleKind enumerates the semantic classes an output identity can map to.
type RoleKind int

const (
	// RoleUnknown covers identities not present in the role table.
	RoleUnknown RoleKind = iota
	// RoleInternal is the built-in laptop panel.
	RoleInternal
	// RoleHDMI is the HDMI connector.
	RoleHDMI
	// RoleDisplayPort is a DisplayPort connector wired directly to the
	// machine (DP-N).
	RoleDisplayPort
	// RoleDockedPort is a DisplayPort connector behind a dock (DP-N-M).
	RoleDockedPort
)

func (k RoleKind) String() string {
	switch k {
	case RoleInternal:
		return "internal"
	case RoleHDMI:
		return "hdmi"
	case RoleDisplayPort:
		return "displayport"
	case RoleDockedPort:
		return "docked-displayport"
	default:
		return "unknown"
	}
}

// Role is the classification of one output identity. It is derived purely
// from the identity string and never changes during a process run.
type Role struct {
	Kind RoleKind
	// Name is the canonical identity for known roles ("eDP-1", "DP-2") and
	// the raw reported identity for unknown outputs.
	Name string
	// Label is the short lowercase form shown in picker menus ("internal",
	// "hdmi", "dp2", "dp-dock-2"). For unknown outputs it equals Name.
	Label string
}

// Table is the closed set of well-known output identities. Identities not
// listed classify as RoleUnknown but are retained, not dropped.
type Table struct {
	Internal string
	HDMI     string
	Ports    []string
	Docked   []string
}

// DefaultTable returns the built-in role table.
func DefaultTable() Table {
	return Table{
		Internal: "eDP-1",
		HDMI:     "HDMI-1",
		Ports:    []string{"DP-1", "DP-2", "DP-3", "DP-4"},
		Docked:   []string{"DP-1-1", "DP-1-2", "DP-1-3"},
	}
}

// Classify maps an identity string to its Role. Matching is exact; anything
// unmatched becomes Unknown with the raw identity as both name and label.
func (t Table) Classify(name string) Role {
	if name == t.Internal {
		return Role{Kind: RoleInternal, Name: name, Label: "internal"}
	}
	if name == t.HDMI {
		return Role{Kind: RoleHDMI, Name: name, Label: "hdmi"}
	}
	for i, port := range t.Ports {
		if name == port {
			return Role{Kind: RoleDisplayPort, Name: name, Label: fmt.Sprintf("dp%d", i+1)}
		}
	}
	for i, port := range t.Docked {
		if name == port {
			return Role{Kind: RoleDockedPort, Name: name, Label: fmt.Sprintf("dp-dock-%d", i+1)}
		}
	}
	return Role{Kind: RoleUnknown, Name: name, Label: name}
}

// Resolve maps a user-facing selection string back to a canonical identity.
// Labels and identities both match, case-insensitively. The second return is
// false when nothing matched and the caller should fall back to the literal
// selection.
func (t Table) Resolve(selection string) (string, bool) {
	want := strings.ToLower(selection)
	for _, name := range t.identities() {
		role := t.Classify(name)
		if want == strings.ToLower(role.Label) || want == strings.ToLower(name) {
			return name, true
		}
	}
	return "", false
}

func (t Table) identities() []string {
	ids := make([]string, 0, 2+len(t.Ports)+len(t.Docked))
	ids = append(ids, t.Internal, t.HDMI)
	ids = append(ids, t.Ports...)
	ids = append(ids, t.Docked...)
	return ids
}
