// Package layout computes ordered output-configuration batches for the
// supported multi-monitor scenarios.
package layout

// Relation positions one output relative to a reference output.
type Relation string

const (
	LeftOf  Relation = "left-of"
	Above   Relation = "above"
	RightOf Relation = "right-of"
	SameAs  Relation = "same-as"
)

// Valid reports whether r is one of the supported relations.
func (r Relation) Valid() bool {
	switch r {
	case LeftOf, Above, RightOf, SameAs:
		return true
	}
	return false
}

// Mode is the mode directive of one operation: automatic (zero value), an
// explicit resolution, or off.
type Mode struct {
	Resolution string
	Off        bool
}

// Auto is the automatic mode directive.
func Auto() Mode { return Mode{} }

// Fixed is an explicit-resolution mode directive, e.g. Fixed("1920x1080").
func Fixed(resolution string) Mode { return Mode{Resolution: resolution} }

// Off disables the output.
func Off() Mode { return Mode{Off: true} }

// IsAuto reports whether m requests automatic mode selection.
func (m Mode) IsAuto() bool { return !m.Off && m.Resolution == "" }

// Operation configures one output within a batch. Relation and Ref are empty
// for operations without a positional directive (re-enable, off).
type Operation struct {
	Output   string
	Relation Relation
	Ref      string
	Mode     Mode
	Rotate   string
}

// Batch is an ordered operation sequence consumed as one invocation of the
// configuration tool. Order matters: later operations may reference the
// position of outputs placed earlier in the same batch.
type Batch []Operation

// Scenario selection strings recognized by the resolver. Any other selection
// is treated as an ad-hoc output identity.
const (
	SelectionInternal    = "internal"
	SelectionHome        = "home"
	SelectionHomePresent = "home-present"
	SelectionPresent     = "present"
)

// IsPresentation reports whether the selection switches presentation mode on
// after a successful apply.
func IsPresentation(selection string) bool {
	return selection == SelectionPresent || selection == SelectionHomePresent
}
