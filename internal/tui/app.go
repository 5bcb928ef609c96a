package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/displayctl/internal/config"
	"github.com/1broseidon/displayctl/internal/ipc"
)

// model is the root bubbletea model for the settings editor.
type model struct {
	configPath string
	cfg        *config.Config
	lastError  string
	flash      string

	ipcClient       *ipc.Client
	listenerRunning bool
	sessionState    string
	lastSelection   string
	outputs         []ipc.OutputInfo

	// Edit mode
	editing bool
	form    *huh.Form
	fields  formFields

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string) model {
	m := model{configPath: configPath}

	m.loadConfig()

	// A running listener is optional; the editor works without one.
	m.ipcClient = ipc.NewClient()
	m.refreshListenerStatus()

	return m
}

// Run starts the settings editor, blocking until the user quits.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(configPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *model) loadConfig() {
	var cfg *config.Config
	var err error

	if m.configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(m.configPath)
	}

	if err != nil {
		m.lastError = err.Error()
		if m.cfg == nil {
			m.cfg = config.DefaultConfig()
		}
		return
	}
	m.cfg = cfg
	m.lastError = ""
}

func (m *model) refreshListenerStatus() {
	if m.ipcClient == nil || !m.ipcClient.Ping() {
		m.listenerRunning = false
		m.sessionState = ""
		m.lastSelection = ""
		m.outputs = nil
		return
	}

	status, err := m.ipcClient.GetStatus()
	if err != nil {
		m.listenerRunning = false
		return
	}
	m.listenerRunning = true
	m.sessionState = status.SessionState
	m.lastSelection = status.LastSelection

	if data, err := m.ipcClient.GetOutputs(); err == nil {
		m.outputs = data.Outputs
	}
}

func (m *model) saveConfig() {
	path := m.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			m.lastError = err.Error()
			return
		}
		path = p
	}

	if err := m.cfg.Validate(); err != nil {
		m.lastError = err.Error()
		return
	}
	if err := m.cfg.SaveTo(path); err != nil {
		m.lastError = err.Error()
		return
	}
	m.lastError = ""
	m.flash = "saved to " + path
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.updateEditing(msg)
	}
	return m.updateDisplay(msg)
}

func (m model) updateDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "e":
			m.startEditing()
			return m, m.form.Init()
		case "r":
			m.loadConfig()
			m.refreshListenerStatus()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.editing = false
			m.form = nil
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.fields.apply(m.cfg)
		m.saveConfig()
		m.editing = false
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m *model) startEditing() {
	m.fields = newFormFields(m.cfg)

	w := m.width - 4
	if w < 40 {
		w = 40
	}
	m.form = m.fields.buildForm(w)
	m.editing = true
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.listenerRunning, m.sessionState, m.lastSelection, len(m.outputs), m.width)
	helpBar := renderHelpBar(m.editing, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.editing && m.form != nil {
		content = renderForm(m.form, m.width, contentHeight)
	} else {
		content = renderSettings(m.cfg, m.outputs, m.lastError, m.flash, m.width, contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		content,
		helpBar,
	)
}
