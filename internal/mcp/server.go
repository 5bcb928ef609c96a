package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/ipc"
	"github.com/1broseidon/displayctl/internal/layout"
	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/session"
)

const (
	ServerName    = "displayctl"
	ServerVersion = "0.1.0"
)

// Engine is the surface the MCP tools drive. *engine.Engine satisfies it.
type Engine interface {
	Outputs(ctx context.Context) ([]display.Output, error)
	ApplyScenario(ctx context.Context, selection, preset string) error
	SessionState() session.State
	LastSelection() string
}

// daemonClient is the slice of the IPC client the tools consult when a
// listener daemon is running. Nil skips the daemon entirely.
type daemonClient interface {
	Ping() bool
	GetStatus() (*ipc.StatusData, error)
	Apply(selection, preset string) error
}

// Server exposes display control as MCP tools over stdio, so an assistant
// can inspect and rearrange the monitor layout.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    Engine
	presets   []layout.Preset
	daemon    daemonClient
	log       logging.Logger
}

// NewServer creates a new MCP server around the given engine.
func NewServer(eng Engine, presets []layout.Preset, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop{}
	}
	if len(presets) == 0 {
		presets = layout.DefaultPresets()
	}

	s := &Server{
		engine:  eng,
		presets: presets,
		daemon:  ipc.NewClient(),
		log:     log,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List the connected display outputs with their roles, plus the layout selections and placement presets currently applicable. Selections are scenario names (internal, home, home-present, present) or the label of a single external output for an ad-hoc layout.",
	}, s.handleListOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_layout",
		Description: "Apply a display layout. The selection is one of the scenarios from list_outputs or an external output label. Scenarios that place an external next to the internal panel accept an optional placement preset (default: first preset).",
	}, s.handleApplyLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the hotplug listener daemon is running, the picker session state, the most recently applied selection and the number of connected outputs.",
	}, s.handleGetStatus)
}
