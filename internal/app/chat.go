package app

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"internationally/internal/client"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// ChatMessage is one transcript entry. IDs are UUIDs so two entries created
// within the same clock tick can never collide.
type ChatMessage struct {
	ID      string
	Content string
	Sender  string
}

// The transcript's generic reply when a send fails. The real cause goes to
// the notifier.
const errorReply = "Sorry, I couldn't process that right now. Please try again in a moment."

// ChatSession owns the transcript for one chat view. Messages are appended
// in send order; each accepted send contributes exactly one user entry and
// one assistant entry (the reply or an error placeholder), so user entries
// never trail assistant entries and lead by at most one mid-flight.
type ChatSession struct {
	mu       sync.Mutex
	messages []ChatMessage

	api     *client.Client
	session *Session
	notify  *Notifier
}

func NewChatSession(api *client.Client, session *Session, notify *Notifier) *ChatSession {
	return &ChatSession{api: api, session: session, notify: notify}
}

// Send runs one chat exchange. Empty or whitespace-only input is rejected
// before any transcript or network activity, reported by the false return.
// The busy flag is held for the duration of the request and cleared on
// every path.
func (c *ChatSession) Send(ctx context.Context, input string) bool {
	content := strings.TrimSpace(input)
	if content == "" {
		return false
	}

	c.append(ChatMessage{ID: uuid.NewString(), Content: content, Sender: SenderUser})

	c.notify.StartLoading()
	defer c.notify.StopLoading()

	reply, err := c.api.SendChatMessage(ctx, content)
	if err != nil {
		c.append(ChatMessage{ID: uuid.NewString(), Content: errorReply, Sender: SenderAssistant})
		c.session.ReportError(err)
		return true
	}

	c.append(ChatMessage{ID: uuid.NewString(), Content: reply, Sender: SenderAssistant})
	return true
}

// Messages returns a copy of the transcript.
func (c *ChatSession) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Clear empties the transcript (used when logging out).
func (c *ChatSession) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

func (c *ChatSession) append(msg ChatMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}
