package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"internationally/internal/app"
)

// chatChrome is the vertical space around the transcript: header, input
// line, help line, error banner.
const chatChrome = 7

type chatViewModel struct {
	vp       viewport.Model
	input    textinput.Model
	renderer *glamour.TermRenderer
	width    int
	ready    bool
}

func newChatViewModel() chatViewModel {
	in := textinput.New()
	in.Placeholder = "Ask about housing, neighborhoods, or student life..."
	in.CharLimit = 2000
	in.Prompt = "> "
	in.Focus()

	return chatViewModel{input: in}
}

func (m *chatViewModel) resize(width, height int) {
	m.width = width
	m.input.Width = width - 6
	h := height - chatChrome
	if h < 3 {
		h = 3
	}
	if !m.ready {
		m.vp = viewport.New(width, h)
		m.ready = true
	} else {
		m.vp.Width = width
		m.vp.Height = h
	}
	m.renderer = nil
}

// refresh rebuilds the transcript text from the session and pins the
// viewport to the newest message.
func (m *chatViewModel) refresh(messages []app.ChatMessage) {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Sender {
		case app.SenderUser:
			b.WriteString(userLabelStyle.Render("You") + "\n")
			b.WriteString(msg.Content + "\n\n")
		default:
			b.WriteString(assistantLabelStyle.Render("Ally") + "\n")
			b.WriteString(m.renderMarkdown(msg.Content) + "\n")
		}
	}
	if m.ready {
		m.vp.SetContent(b.String())
		m.vp.GotoBottom()
	}
}

func (m *chatViewModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		wrap := m.width - 4
		if wrap < 20 {
			wrap = 20
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return content
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func (m chatViewModel) update(msg tea.Msg, chat *app.ChatSession, notify *app.Notifier) (chatViewModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		// One message in flight at a time; the input stays read-only
		// until the reply lands.
		if notify.Loading() {
			return m, nil
		}
		content := m.input.Value()
		if strings.TrimSpace(content) == "" {
			return m, nil
		}
		m.input.SetValue("")
		return m, func() tea.Msg {
			chat.Send(context.Background(), content)
			return chatSentMsg{}
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m chatViewModel) view(spin spinner.Model, notify *app.Notifier) string {
	var b strings.Builder
	if m.ready {
		b.WriteString(m.vp.View() + "\n")
	}
	if notify.Loading() {
		b.WriteString(subtitleStyle.Render(spin.View()+" Ally is thinking...") + "\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}
