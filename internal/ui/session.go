// Package ui renders the terminal frontend for a godesk participant. It is
// a pure subscriber of the orchestrator's event channel; all connection
// logic lives in pkg/control.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomaslejdung/godesk/pkg/control"
	"github.com/tomaslejdung/godesk/pkg/protocol"
)

// eventMsg wraps one orchestrator event for the bubbletea loop.
type eventMsg control.Event

// eventsClosedMsg signals the orchestrator has gone away.
type eventsClosedMsg struct{}

func waitForEvent(ch <-chan control.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// SessionModel is the shared host/client session screen.
type SessionModel struct {
	orch      *control.Orchestrator
	sessionID string

	spinner spinner.Model

	state         control.State
	reason        string
	pendingClient string
	streaming     bool
	resolution    *protocol.Resolution
	lastNote      string

	// terminal size, used to normalize mouse coordinates on the client
	width  int
	height int

	quitting bool
}

// NewSessionModel builds the session screen for a started orchestrator.
func NewSessionModel(orch *control.Orchestrator, sessionID string) SessionModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return SessionModel{
		orch:      orch,
		sessionID: sessionID,
		spinner:   sp,
		state:     orch.State(),
		width:     80,
		height:    24,
	}
}

func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.orch.Events()))
}

func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.forwardMouse(msg)
		return m, nil

	case eventMsg:
		m.applyEvent(control.Event(msg))
		return m, waitForEvent(m.orch.Events())

	case eventsClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingClient != "" {
		switch msg.String() {
		case "y", "Y":
			m.orch.GrantPermission()
			m.pendingClient = ""
			return m, nil
		case "n", "N":
			m.orch.DenyPermission("declined by host")
			m.pendingClient = ""
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.orch.Stop()
		return m, tea.Quit
	case "ctrl+d":
		m.orch.Disconnect()
		return m, nil
	}

	// A connected client forwards ordinary keystrokes to the host.
	if m.orch.Role() == control.RoleClient && m.state == control.StateConnected {
		m.forwardKey(msg)
	}
	return m, nil
}

func (m SessionModel) forwardKey(msg tea.KeyMsg) {
	data := protocol.KeyboardData{
		Key:  msg.String(),
		Code: msg.String(),
	}
	m.orch.SendKey(data, true)
	m.orch.SendKey(data, false)
}

// forwardMouse maps terminal cells onto the normalized [0,1] surface the
// wire protocol expects.
func (m SessionModel) forwardMouse(msg tea.MouseMsg) {
	if m.orch.Role() != control.RoleClient || m.state != control.StateConnected {
		return
	}
	if m.width <= 1 || m.height <= 1 {
		return
	}
	x := float64(msg.X) / float64(m.width-1)
	y := float64(msg.Y) / float64(m.height-1)

	switch msg.Action {
	case tea.MouseActionMotion:
		m.orch.SendMouseMove(x, y)
	case tea.MouseActionPress:
		if button := mouseButton(msg.Button); button != "" {
			m.orch.SendMouseDown(x, y, button)
		}
	case tea.MouseActionRelease:
		if button := mouseButton(msg.Button); button != "" {
			m.orch.SendMouseUp(x, y, button)
		}
	}
}

func mouseButton(b tea.MouseButton) string {
	switch b {
	case tea.MouseButtonLeft:
		return "left"
	case tea.MouseButtonRight:
		return "right"
	case tea.MouseButtonMiddle:
		return "middle"
	default:
		return ""
	}
}

func (m *SessionModel) applyEvent(ev control.Event) {
	switch ev.Kind {
	case control.EventStateChanged:
		m.state = ev.State
		m.reason = ev.Reason
		if ev.State != control.StateConnected {
			m.streaming = false
		}
	case control.EventPermissionRequest:
		m.pendingClient = ev.ClientID
	case control.EventStreamReceived:
		m.streaming = true
	case control.EventResolution:
		m.resolution = ev.Resolution
	case control.EventClientLeft:
		m.lastNote = fmt.Sprintf("client %s left", shortID(ev.ClientID))
	}
}

func (m SessionModel) View() string {
	if m.quitting {
		return "bye\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("godesk"))
	b.WriteString("\n")
	b.WriteString("session  " + codeStyle.Render(m.sessionID))
	b.WriteString("\n\n")

	b.WriteString("role   " + dimStyle.Render(m.orch.Role().String()) + "\n")
	b.WriteString("state  " + m.stateLine() + "\n")

	if m.orch.SideChannelReady() {
		b.WriteString("input  " + stateConnectedStyle.Render("p2p side-channel") + "\n")
	} else if m.state == control.StateConnected {
		b.WriteString("input  " + statePendingStyle.Render("relay fallback") + "\n")
	}

	if m.resolution != nil {
		b.WriteString(fmt.Sprintf("remote %dx%d\n", m.resolution.Width, m.resolution.Height))
	}
	if m.streaming {
		b.WriteString("video  " + stateConnectedStyle.Render("receiving") + "\n")
	}
	if m.lastNote != "" {
		b.WriteString(dimStyle.Render(m.lastNote) + "\n")
	}

	if m.pendingClient != "" {
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(
			fmt.Sprintf(" client %s wants to connect - share your screen? [y/n] ", shortID(m.pendingClient)),
		))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("q quit · ctrl+d disconnect"))
	b.WriteString("\n")
	return b.String()
}

func (m SessionModel) stateLine() string {
	switch m.state {
	case control.StateConnected:
		return stateConnectedStyle.Render(m.state.String())
	case control.StateFailed:
		line := stateFailedStyle.Render(m.state.String())
		if m.reason != "" {
			line += " " + dimStyle.Render("("+m.reason+")")
		}
		return line
	case control.StateDisconnected:
		line := m.state.String()
		if m.reason != "" {
			line += " " + dimStyle.Render("("+m.reason+")")
		}
		return line
	default:
		return m.spinner.View() + " " + statePendingStyle.Render(m.state.String())
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunSession runs the session screen until the user quits.
func RunSession(orch *control.Orchestrator, sessionID string) error {
	p := tea.NewProgram(NewSessionModel(orch, sessionID), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
