package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"internationally/internal/app"
	"internationally/internal/client"
)

type signupModel struct {
	inputs []textinput.Model // first name, last name, email, password
	focus  int
	busy   bool
}

func newSignupModel() signupModel {
	mk := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 128
		in.Width = 40
		return in
	}

	first := mk("first name")
	first.Focus()
	last := mk("last name")
	email := mk("email")
	password := mk("password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return signupModel{inputs: []textinput.Model{first, last, email, password}}
}

func (m signupModel) update(msg tea.Msg, session *app.Session) (signupModel, tea.Cmd) {
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

func (m signupModel) submit(session *app.Session) (signupModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	req := client.SignupRequest{
		FirstName: strings.TrimSpace(m.inputs[0].Value()),
		LastName:  strings.TrimSpace(m.inputs[1].Value()),
		Email:     strings.TrimSpace(m.inputs[2].Value()),
		Password:  m.inputs[3].Value(),
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return m, nil
	}
	m.busy = true
	return m, func() tea.Msg {
		_, err := session.Signup(context.Background(), req)
		return signupDoneMsg{err: err}
	}
}

func (m *signupModel) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m *signupModel) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.setFocus(0)
	m.busy = false
}

func (m signupModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create an account") + "\n\n")
	labels := []string{"First name", "Last name", "Email", "Password"}
	for i, in := range m.inputs {
		style := blurredFieldStyle
		if i == m.focus {
			style = focusedFieldStyle
		}
		b.WriteString(style.Render(labels[i]) + "\n" + in.View() + "\n\n")
	}
	if m.busy {
		b.WriteString(subtitleStyle.Render("Creating your account..."))
	}
	return formBoxStyle.Render(b.String())
}
