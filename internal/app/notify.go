package app

import (
	"sync"
	"time"
)

// DefaultErrorTimeout is how long an error banner stays up before it clears
// itself.
const DefaultErrorTimeout = 5 * time.Second

// Notifier is the process-wide ephemeral UI state: one current error message
// and one busy flag. Loading is a plain flag, not a counter; overlapping
// operations must each balance their Start/Stop calls.
//
// Each ShowError bumps a generation, and a clear only fires if its
// generation is still current, so a newer error is never clipped by an older
// error's timeout ("latest error wins").
type Notifier struct {
	mu      sync.Mutex
	message string
	busy    bool
	gen     int

	timeout  time.Duration
	onChange func()
}

// NewNotifier builds a notifier whose errors self-clear after
// DefaultErrorTimeout. A timeout of 0 disables self-clearing; the owner is
// then responsible for scheduling ClearIf (the TUI does this with a tick so
// the repaint happens on its own event loop).
func NewNotifier(timeout time.Duration) *Notifier {
	return &Notifier{timeout: timeout}
}

// OnChange registers a callback invoked after every state change.
func (n *Notifier) OnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// ShowError displays msg and returns its generation. If the notifier has a
// timeout, a clear for this generation is scheduled automatically.
func (n *Notifier) ShowError(msg string) int {
	n.mu.Lock()
	n.message = msg
	n.gen++
	gen := n.gen
	timeout := n.timeout
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn()
	}
	if timeout > 0 {
		time.AfterFunc(timeout, func() { n.ClearIf(gen) })
	}
	return gen
}

// ClearIf removes the error banner if gen is still the current error. A
// stale generation is a no-op.
func (n *Notifier) ClearIf(gen int) {
	n.mu.Lock()
	if n.gen != gen {
		n.mu.Unlock()
		return
	}
	n.message = ""
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Error returns the current banner message, or "" when none is shown.
func (n *Notifier) Error() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Generation returns the generation of the current error.
func (n *Notifier) Generation() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gen
}

func (n *Notifier) StartLoading() {
	n.setBusy(true)
}

func (n *Notifier) StopLoading() {
	n.setBusy(false)
}

func (n *Notifier) Loading() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.busy
}

func (n *Notifier) setBusy(v bool) {
	n.mu.Lock()
	n.busy = v
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn()
	}
}
