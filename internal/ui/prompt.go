package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomaslejdung/godesk/pkg/signal"
)

// promptModel asks the user for a session code.
type promptModel struct {
	input    textinput.Model
	errText  string
	code     string
	canceled bool
}

func newPromptModel() promptModel {
	ti := textinput.New()
	ti.Placeholder = "1234567890"
	ti.CharLimit = 12
	ti.Width = 14
	ti.Focus()
	return promptModel{input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			code := signal.NormalizeSessionCode(m.input.Value())
			if !signal.ValidateSessionCode(code) {
				m.errText = "session codes are 10 digits"
				return m, nil
			}
			m.code = code
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	view := titleStyle.Render("godesk") + "\n" +
		"enter the session code shared by the host:\n\n" +
		m.input.View() + "\n"
	if m.errText != "" {
		view += stateFailedStyle.Render(m.errText) + "\n"
	}
	view += helpStyle.Render("enter confirm · esc cancel") + "\n"
	return view
}

// PromptSessionCode interactively asks for a session code and validates it.
func PromptSessionCode() (string, error) {
	p := tea.NewProgram(newPromptModel())
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(promptModel)
	if !ok || m.canceled || m.code == "" {
		return "", fmt.Errorf("no session code entered")
	}
	return m.code, nil
}
