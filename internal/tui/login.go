package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"internationally/internal/app"
)

type loginModel struct {
	inputs []textinput.Model // email, password
	focus  int
	busy   bool
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{inputs: []textinput.Model{email, password}}
}

func (m loginModel) update(msg tea.Msg, session *app.Session) (loginModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m.submit(session)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) submit(session *app.Session) (loginModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	email := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	if email == "" || password == "" {
		return m, nil
	}
	m.busy = true
	return m, func() tea.Msg {
		return loginDoneMsg{ok: session.Login(context.Background(), email, password)}
	}
}

func (m *loginModel) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m *loginModel) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.setFocus(0)
	m.busy = false
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Log in") + "\n\n")
	labels := []string{"Email", "Password"}
	for i, in := range m.inputs {
		style := blurredFieldStyle
		if i == m.focus {
			style = focusedFieldStyle
		}
		b.WriteString(style.Render(labels[i]) + "\n" + in.View() + "\n\n")
	}
	if m.busy {
		b.WriteString(subtitleStyle.Render("Signing in..."))
	}
	return formBoxStyle.Render(b.String())
}
