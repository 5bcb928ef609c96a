package layout

// Preset is a named relation+mode pair offered for ad-hoc and presentation
// placements. The preset set is fixed at process start and read-only after.
type Preset struct {
	Name     string
	Relation Relation
	Mode     Mode
}

// DefaultPresets returns the built-in preset list in menu order.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "left", Relation: LeftOf, Mode: Auto()},
		{Name: "above", Relation: Above, Mode: Auto()},
		{Name: "left fullhd", Relation: LeftOf, Mode: Fixed("1920x1080")},
		{Name: "right", Relation: RightOf, Mode: Auto()},
		{Name: "same", Relation: SameAs, Mode: Auto()},
	}
}

// PresetNames returns the preset names in menu order.
func PresetNames(presets []Preset) []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// FindPreset looks up a preset by name.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
