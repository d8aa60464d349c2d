package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"internationally/internal/app"
	"internationally/internal/client"
)

type profileModel struct {
	inputs []textinput.Model // university, student status, visa type, housing preferences
	focus  int
	busy   bool
}

func newProfileModel() profileModel {
	mk := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 256
		in.Width = 48
		return in
	}

	university := mk("university")
	university.Focus()
	status := mk("student status (e.g. F-1 undergraduate)")
	visa := mk("visa type")
	housing := mk("housing preferences")

	return profileModel{inputs: []textinput.Model{university, status, visa, housing}}
}

// load seeds the form from the cached profile.
func (m *profileModel) load(u *client.UserProfile) {
	if u == nil {
		return
	}
	m.inputs[0].SetValue(u.University)
	m.inputs[1].SetValue(u.StudentStatus)
	m.inputs[2].SetValue(u.VisaType)
	m.inputs[3].SetValue(u.HousingPreferences)
	m.setFocus(0)
	m.busy = false
}

func (m profileModel) update(msg tea.Msg, api *client.Client, session *app.Session) (profileModel, tea.Cmd) {
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
			return m.submit(api, session)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m profileModel) submit(api *client.Client, session *app.Session) (profileModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	str := func(i int) *string {
		v := strings.TrimSpace(m.inputs[i].Value())
		return &v
	}
	upd := client.ProfileUpdate{
		University:         str(0),
		StudentStatus:      str(1),
		VisaType:           str(2),
		HousingPreferences: str(3),
	}
	m.busy = true
	return m, func() tea.Msg {
		u, err := api.UpdateProfile(context.Background(), upd)
		if err != nil {
			session.ReportError(err)
			return profileSavedMsg{err: err}
		}
		session.SetUser(u)
		return profileSavedMsg{}
	}
}

func (m *profileModel) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m profileModel) view(u *client.UserProfile) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your profile") + "\n")
	if u != nil {
		b.WriteString(subtitleStyle.Render(u.FirstName+" "+u.LastName+" • "+u.Email) + "\n")
	}
	b.WriteString("\n")
	labels := []string{"University", "Student status", "Visa type", "Housing preferences"}
	for i, in := range m.inputs {
		style := blurredFieldStyle
		if i == m.focus {
			style = focusedFieldStyle
		}
		b.WriteString(style.Render(labels[i]) + "\n" + in.View() + "\n\n")
	}
	if m.busy {
		b.WriteString(subtitleStyle.Render("Saving..."))
	}
	return formBoxStyle.Render(b.String())
}
