package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/runtimepath"
	"github.com/1broseidon/displayctl/internal/session"
)

// Engine is the surface the IPC server drives. *engine.Engine satisfies it.
type Engine interface {
	Outputs(ctx context.Context) ([]display.Output, error)
	ApplyScenario(ctx context.Context, selection, preset string) error
	SessionState() session.State
	LastSelection() string
}

// Server handles IPC requests over a Unix domain socket
type Server struct {
	engine       Engine
	log          logging.Logger
	listener     net.Listener
	socketPath   string
	startedAt    time.Time
	listenerUp   func() bool
	mu           sync.Mutex
	shuttingDown bool
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server. listenerUp reports whether the hotplug
// listener is attached; pass nil when the process runs without one.
func NewServer(eng Engine, log logging.Logger, listenerUp func() bool) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve socket path: %w", err)
	}
	return newServerAt(socketPath, eng, log, listenerUp), nil
}

func newServerAt(socketPath string, eng Engine, log logging.Logger, listenerUp func() bool) *Server {
	if log == nil {
		log = logging.Noop{}
	}
	if listenerUp == nil {
		listenerUp = func() bool { return false }
	}
	return &Server{
		engine:     eng,
		log:        log,
		socketPath: socketPath,
		listenerUp: listenerUp,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove existing socket file if it exists
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	// Restrict to the owning user; the socket accepts apply commands.
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.startedAt = time.Now()
	s.log.Info("ipc server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts and handles incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			shuttingDown := s.shuttingDown
			s.mu.Unlock()

			if shuttingDown {
				return
			}
			s.log.Warn("ipc accept error", "err", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection processes a single client connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(30 * time.Second))

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		s.log.Warn("ipc read error", "err", err)
		return
	}

	req, err := ParseRequest(line)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}

	s.log.Debug("ipc request", "command", req.Command)

	var resp *Response
	switch req.Command {
	case CommandGetStatus:
		resp = s.handleGetStatus()
	case CommandGetOutputs:
		resp = s.handleGetOutputs()
	case CommandApply:
		resp = s.handleApply(req.Payload)
	default:
		resp = NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}

	respBytes, err := resp.Marshal()
	if err != nil {
		s.log.Error("ipc marshal error", "err", err)
		return
	}

	respBytes = append(respBytes, '\n')
	if _, err := conn.Write(respBytes); err != nil {
		s.log.Warn("ipc write error", "err", err)
	}
}

func (s *Server) handleGetStatus() *Response {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	connected := 0
	if outputs, err := s.engine.Outputs(ctx); err == nil {
		connected = len(outputs)
	}

	data := StatusData{
		ListenerRunning: s.listenerUp(),
		SessionState:    s.engine.SessionState().String(),
		LastSelection:   s.engine.LastSelection(),
		ConnectedCount:  connected,
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to build status: %v", err))
	}
	return resp
}

func (s *Server) handleGetOutputs() *Response {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outputs, err := s.engine.Outputs(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to query outputs: %v", err))
	}

	data := OutputsData{Outputs: make([]OutputInfo, 0, len(outputs))}
	for _, out := range outputs {
		data.Outputs = append(data.Outputs, OutputInfo{
			Name:  out.Name,
			Role:  out.Role.Kind.String(),
			Label: out.Role.Label,
			Model: out.Model,
		})
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to build outputs: %v", err))
	}
	return resp
}

func (s *Server) handleApply(payload json.RawMessage) *Response {
	var req ApplyPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid apply payload: %v", err))
		}
	}
	if req.Selection == "" {
		return NewErrorResponse("apply requires a selection")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := s.engine.ApplyScenario(ctx, req.Selection, req.Preset); err != nil {
		return NewErrorResponse(err.Error())
	}

	resp, err := NewOKResponse(nil)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to build response: %v", err))
	}
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	respBytes, err := resp.Marshal()
	if err != nil {
		s.log.Error("ipc marshal error", "err", err)
		return
	}

	respBytes = append(respBytes, '\n')
	if _, err := conn.Write(respBytes); err != nil {
		s.log.Warn("ipc write error", "err", err)
	}
}

// Stop shuts down the IPC server
func (s *Server) Stop() error {
	s.mu.Lock()
	s.shuttingDown = true
	s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			return fmt.Errorf("failed to close listener: %w", err)
		}
	}

	s.wg.Wait()

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove socket file: %w", err)
	}

	s.log.Info("ipc server stopped")
	return nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}
