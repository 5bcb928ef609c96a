// Package display models the outputs reported by the display system and
// their semantic roles.
package display

import "strings"

// Output is one physical connector as reported by the display system.
// Constructed fresh on every inventory query and never mutated.
type Output struct {
	Name      string
	Role      Role
	Connected bool
	// Model is the monitor model decoded from the EDID block, when present.
	Model string
}

func (o Output) String() string { return o.Name }

// IsInternal reports whether this output is the built-in panel.
func (o Output) IsInternal() bool { return o.Role.Kind == RoleInternal }

// IsDP reports whether the identity carries the DisplayPort prefix. Docked
// ports count; the internal panel ("eDP-1") does not.
func (o Output) IsDP() bool { return strings.HasPrefix(o.Name, DPPrefix) }

// Label returns the user-facing short name for this output.
func (o Output) Label() string { return o.Role.Label }

// OnlyInternal reports whether the connected set is exactly the internal
// panel. This is the undock fallback condition.
func OnlyInternal(outputs []Output) bool {
	return len(outputs) == 1 && outputs[0].IsInternal()
}

// HasKind reports whether any output in the set carries the given role kind.
func HasKind(outputs []Output, kind RoleKind) bool {
	for _, o := range outputs {
		if o.Role.Kind == kind {
			return true
		}
	}
	return false
}

// Names returns the identities of the given outputs, report order preserved.
func Names(outputs []Output) []string {
	names := make([]string, len(outputs))
	for i, o := range outputs {
		names[i] = o.Name
	}
	return names
}
