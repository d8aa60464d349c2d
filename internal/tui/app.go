// Package tui is the terminal front end. A single root Model owns the
// program state and delegates to one sub-view at a time; which sub-view is
// active follows from the session route, never from ad-hoc flags.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"internationally/internal/app"
	"internationally/internal/client"
)

type (
	sessionCheckedMsg struct{}
	loginDoneMsg      struct{ ok bool }
	signupDoneMsg     struct{ err error }
	chatSentMsg       struct{}
	profileSavedMsg   struct{ err error }
	// errTickMsg asks the notifier to clear the error banner, but only if
	// the banner still shows the generation this tick was scheduled for.
	errTickMsg struct{ gen int }
)

type Model struct {
	api     *client.Client
	session *app.Session
	chat    *app.ChatSession
	notify  *app.Notifier

	width  int
	height int

	spin     spinner.Model
	login    loginModel
	signup   signupModel
	chatView chatViewModel
	profile  profileModel

	// showSignup and showProfile pick the secondary form inside the login
	// and app routes respectively.
	showSignup  bool
	showProfile bool
}

func New(api *client.Client, session *app.Session, chat *app.ChatSession, notify *app.Notifier) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return Model{
		api:      api,
		session:  session,
		chat:     chat,
		notify:   notify,
		spin:     s,
		login:    newLoginModel(),
		signup:   newSignupModel(),
		chatView: newChatViewModel(),
		profile:  newProfileModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.checkSession())
}

func (m *Model) checkSession() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.Check(context.Background())
		return sessionCheckedMsg{}
	}
}

// errBannerTick schedules the auto-clear for the currently shown error. The
// generation is captured now so a later, newer error is never clipped by
// this tick firing.
func (m *Model) errBannerTick() tea.Cmd {
	if m.notify.Error() == "" {
		return nil
	}
	gen := m.notify.Generation()
	return tea.Tick(app.DefaultErrorTimeout, func(time.Time) tea.Msg {
		return errTickMsg{gen: gen}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatView.resize(msg.Width, msg.Height)
		m.chatView.refresh(m.chat.Messages())
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case errTickMsg:
		m.notify.ClearIf(msg.gen)
		return m, nil

	case sessionCheckedMsg:
		if app.Resolve(m.session) == app.RouteApp {
			m.profile.load(m.session.User())
		}
		return m, m.errBannerTick()

	case loginDoneMsg:
		if msg.ok {
			m.login.reset()
			m.showSignup = false
			m.profile.load(m.session.User())
		}
		m.login.busy = false
		return m, m.errBannerTick()

	case signupDoneMsg:
		if msg.err == nil {
			m.signup.reset()
			m.showSignup = false
			m.profile.load(m.session.User())
		}
		m.signup.busy = false
		return m, m.errBannerTick()

	case chatSentMsg:
		m.chatView.refresh(m.chat.Messages())
		if m.session.State() != app.StateAuthenticated {
			// Expired mid-chat; the guard sends the user back to login.
			m.showProfile = false
		}
		return m, m.errBannerTick()

	case profileSavedMsg:
		if msg.err == nil {
			m.showProfile = false
			m.profile.load(m.session.User())
		}
		m.profile.busy = false
		return m, m.errBannerTick()
	}

	switch app.Resolve(m.session) {
	case app.RouteWait:
		return m, nil
	case app.RouteLogin:
		return m.updateAnonymous(msg)
	default:
		return m.updateAuthenticated(msg)
	}
}

func (m Model) updateAnonymous(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+s":
			m.showSignup = !m.showSignup
			return m, nil
		case "esc":
			if m.showSignup {
				m.showSignup = false
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.showSignup {
		m.signup, cmd = m.signup.update(msg, m.session)
	} else {
		m.login, cmd = m.login.update(msg, m.session)
	}
	return m, cmd
}

func (m Model) updateAuthenticated(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+p":
			m.showProfile = !m.showProfile
			if m.showProfile {
				m.profile.load(m.session.User())
			}
			return m, nil
		case "ctrl+l":
			m.session.Logout()
			m.chat.Clear()
			m.chatView.refresh(nil)
			m.showProfile = false
			return m, nil
		case "esc":
			if m.showProfile {
				m.showProfile = false
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.showProfile {
		m.profile, cmd = m.profile.update(msg, m.api, m.session)
	} else {
		m.chatView, cmd = m.chatView.update(msg, m.chat, m.notify)
	}
	return m, cmd
}

func (m Model) View() string {
	var body string
	switch app.Resolve(m.session) {
	case app.RouteWait:
		body = subtitleStyle.Render(m.spin.View() + " Checking your session...")
	case app.RouteLogin:
		if m.showSignup {
			body = m.signup.view()
		} else {
			body = m.login.view()
		}
	default:
		if m.showProfile {
			body = m.profile.view(m.session.User())
		} else {
			body = m.chatView.view(m.spin, m.notify)
		}
	}

	header := titleStyle.Render("InternationAlly") +
		subtitleStyle.Render("your international student advisor")

	banner := ""
	if errMsg := m.notify.Error(); errMsg != "" {
		banner = errorBannerStyle.Render(errMsg)
	}

	parts := []string{header, body}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, m.helpLine())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) helpLine() string {
	switch app.Resolve(m.session) {
	case app.RouteLogin:
		if m.showSignup {
			return helpStyle.Render("enter submit • esc back to login • ctrl+c quit")
		}
		return helpStyle.Render("enter submit • ctrl+s sign up • ctrl+c quit")
	case app.RouteApp:
		if m.showProfile {
			return helpStyle.Render("enter save • esc back to chat • ctrl+c quit")
		}
		return helpStyle.Render("enter send • ctrl+p profile • ctrl+l log out • ctrl+c quit")
	}
	return helpStyle.Render("ctrl+c quit")
}
