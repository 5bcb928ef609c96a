package mcp

// ListOutputsInput is the input for the list_outputs tool.
type ListOutputsInput struct{}

// OutputEntry describes one connected output.
type OutputEntry struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Label    string `json:"label"`
	Model    string `json:"model,omitempty"`
	Internal bool   `json:"internal"`
}

// ListOutputsOutput is the output for the list_outputs tool.
type ListOutputsOutput struct {
	Outputs    []OutputEntry `json:"outputs"`
	Selections []string      `json:"selections"`
	Presets    []string      `json:"presets"`
}

// ApplyLayoutInput is the input for the apply_layout tool.
type ApplyLayoutInput struct {
	Selection string `json:"selection" jsonschema:"required,Layout selection: a scenario name (internal, home, home-present, present) or an external output label for an ad-hoc layout"`
	Preset    string `json:"preset,omitempty" jsonschema:"Placement preset name for present and ad-hoc selections (default: first configured preset)"`
}

// ApplyLayoutOutput is the output for the apply_layout tool.
type ApplyLayoutOutput struct {
	Selection string `json:"selection"`
	Preset    string `json:"preset,omitempty"`
	Applied   bool   `json:"applied"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	ListenerRunning bool   `json:"listener_running"`
	SessionState    string `json:"session_state"`
	LastSelection   string `json:"last_selection,omitempty"`
	ConnectedCount  int    `json:"connected_count"`
}
