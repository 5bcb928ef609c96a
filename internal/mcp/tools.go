package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/layout"
)

func (s *Server) handleListOutputs(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListOutputsInput) (*mcpsdk.CallToolResult, ListOutputsOutput, error) {
	outputs, err := s.engine.Outputs(ctx)
	if err != nil {
		s.log.Warn("list_outputs query failed", "err", err)
		return nil, ListOutputsOutput{}, fmt.Errorf("failed to query outputs: %w", err)
	}

	out := ListOutputsOutput{
		Outputs:    make([]OutputEntry, 0, len(outputs)),
		Selections: selectionsFor(outputs),
		Presets:    layout.PresetNames(s.presets),
	}
	for _, o := range outputs {
		out.Outputs = append(out.Outputs, OutputEntry{
			Name:     o.Name,
			Role:     o.Role.Kind.String(),
			Label:    o.Label(),
			Model:    o.Model,
			Internal: o.IsInternal(),
		})
	}

	return nil, out, nil
}

func (s *Server) handleApplyLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args ApplyLayoutInput) (*mcpsdk.CallToolResult, ApplyLayoutOutput, error) {
	selection := strings.TrimSpace(args.Selection)
	if selection == "" {
		return nil, ApplyLayoutOutput{}, fmt.Errorf("selection is required")
	}

	// Prefer the listener daemon so its hooks and session state stay
	// authoritative, same as the cli front end.
	var err error
	if s.daemon != nil && s.daemon.Ping() {
		err = s.daemon.Apply(selection, args.Preset)
	} else {
		err = s.engine.ApplyScenario(ctx, selection, args.Preset)
	}
	if err != nil {
		s.log.Warn("apply_layout failed", "selection", selection, "err", err)
		return nil, ApplyLayoutOutput{}, err
	}

	s.log.Info("layout applied via mcp", "selection", selection, "preset", args.Preset)
	return nil, ApplyLayoutOutput{
		Selection: selection,
		Preset:    args.Preset,
		Applied:   true,
	}, nil
}

func (s *Server) handleGetStatus(ctx context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	out := GetStatusOutput{SessionState: s.engine.SessionState().String()}
	if outputs, err := s.engine.Outputs(ctx); err == nil {
		out.ConnectedCount = len(outputs)
	}

	if s.daemon != nil && s.daemon.Ping() {
		if status, err := s.daemon.GetStatus(); err == nil {
			out.ListenerRunning = true
			out.SessionState = status.SessionState
			out.LastSelection = status.LastSelection
		}
	}
	if out.LastSelection == "" {
		out.LastSelection = s.engine.LastSelection()
	}

	return nil, out, nil
}

// selectionsFor mirrors the interactive menu without its blank separator:
// the internal fallback, the composite scenarios when an external is
// connected, then one label per external output.
func selectionsFor(outputs []display.Output) []string {
	selections := []string{layout.SelectionInternal}
	if !display.OnlyInternal(outputs) {
		selections = append(selections,
			layout.SelectionHome, layout.SelectionHomePresent, layout.SelectionPresent)
	}
	for _, o := range outputs {
		if o.IsInternal() {
			continue
		}
		selections = append(selections, o.Label())
	}
	return selections
}
