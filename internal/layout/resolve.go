package layout

import (
	"fmt"
	"strings"

	"github.com/1broseidon/displayctl/internal/display"
)

// AmbiguousError reports an inventory that fits no presentation shape. It
// carries the full connected-output list for diagnostic display.
type AmbiguousError struct {
	Outputs []display.Output
	reason  string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: connected outputs: %s",
		e.reason, strings.Join(display.Names(e.Outputs), ", "))
}

// HomeLayout names the two external outputs of the fixed docking rig: the
// primary external panel placed left of the internal one, and the rotated
// portrait panel placed left of that.
type HomeLayout struct {
	External string
	Vertical string
}

// Assignment names the two outputs of a resolved presentation layout.
type Assignment struct {
	Projector string
	Mirror    string
}

// Resolver computes operation batches for the supported scenarios. All
// fields are set once at construction and read-only afterwards.
type Resolver struct {
	Table display.Table
	Home  HomeLayout
	// PresentResolution is the explicit mode forced onto the primary
	// external output by the home-present variant.
	PresentResolution string
}

// NewResolver returns a Resolver over the given role table with the built-in
// home rig and presentation resolution.
func NewResolver(table display.Table) *Resolver {
	return &Resolver{
		Table:             table,
		Home:              HomeLayout{External: "DP-2", Vertical: "DP-1-2"},
		PresentResolution: "1920x1080",
	}
}

// InternalOnly disables every connected output except the internal panel.
// With only the internal panel connected the batch is empty; the caller
// still treats that as an applied layout.
func (r *Resolver) InternalOnly(outputs []display.Output) Batch {
	var batch Batch
	for _, o := range outputs {
		if o.IsInternal() {
			continue
		}
		batch = append(batch, Operation{Output: o.Name, Mode: Off()})
	}
	return batch
}

// HomeDocked returns the fixed three-operation docking batch. It does not
// consult the live inventory; the rig's output identities are stable. The
// present variant forces the primary external output to the presentation
// resolution instead of automatic mode.
func (r *Resolver) HomeDocked(present bool) Batch {
	externalMode := Auto()
	if present {
		externalMode = Fixed(r.PresentResolution)
	}
	return Batch{
		{Output: r.Home.External, Relation: LeftOf, Ref: r.Table.Internal, Mode: externalMode},
		{Output: r.Home.Vertical, Relation: LeftOf, Ref: r.Home.External, Mode: Auto(), Rotate: "right"},
		{Output: r.Table.Internal, Mode: Auto()},
	}
}

// AssignPresentation partitions the inventory into a projector and a mirror
// target, or fails with AmbiguousError when the shape is unsupported. The
// shape is validated before any preset prompt so an ambiguous inventory
// never reaches the user as a selection.
func (r *Resolver) AssignPresentation(outputs []display.Output) (Assignment, error) {
	var dps []display.Output
	hdmi := ""
	for _, o := range outputs {
		if o.IsDP() {
			dps = append(dps, o)
		}
		if o.Role.Kind == display.RoleHDMI {
			hdmi = o.Name
		}
	}

	switch {
	case len(dps) == 0:
		return Assignment{}, &AmbiguousError{Outputs: outputs, reason: "no DisplayPort outputs connected"}
	case len(dps) == 1 && hdmi != "":
		return Assignment{Projector: hdmi, Mirror: dps[0].Name}, nil
	case len(dps) == 2 && hdmi == "":
		a, b := dps[0].Name, dps[1].Name
		if projectorBefore(b, a) {
			a, b = b, a
		}
		return Assignment{Projector: a, Mirror: b}, nil
	default:
		return Assignment{}, &AmbiguousError{Outputs: outputs, reason: "unsupported output combination"}
	}
}

// projectorBefore orders two DisplayPort identities so that the docked
// output (deeper hyphen chain, DP-1-2 vs DP-2) proxies as the projector and
// the plain output as the mirror target. Equal depth falls back to the
// lexicographically greater identity, keeping the assignment deterministic
// regardless of report order. This is a policy reading of the DP-<n>-<m>
// names docks produce, not a property of RandR; check it against any new
// dock or GPU naming scheme before trusting the assignment.
func projectorBefore(a, b string) bool {
	ca, cb := strings.Count(a, "-"), strings.Count(b, "-")
	if ca != cb {
		return ca > cb
	}
	return a > b
}

// Presentation builds the two-operation batch for a resolved assignment: the
// mirror target placed per the preset relative to the internal panel, the
// projector mirroring it in automatic mode.
func (r *Resolver) Presentation(a Assignment, preset Preset) Batch {
	return Batch{
		{Output: a.Mirror, Relation: preset.Relation, Ref: r.Table.Internal, Mode: preset.Mode},
		{Output: a.Projector, Relation: SameAs, Ref: a.Mirror, Mode: Auto()},
	}
}

// AdHoc places a single external output per the preset relative to the
// internal panel. The selection resolves against the role table
// case-insensitively (labels and identities both match) and falls back to
// the literal string for outputs outside the table.
func (r *Resolver) AdHoc(selection string, preset Preset) Batch {
	name, ok := r.Table.Resolve(selection)
	if !ok {
		name = selection
	}
	return Batch{
		{Output: name, Relation: preset.Relation, Ref: r.Table.Internal, Mode: preset.Mode},
	}
}
