// Package app holds the client-side application state: the auth session
// machine, the chat transcript, and the notification banner/busy flag. Each
// piece is owned by exactly one component and handed to consumers as an
// explicit reference; there are no package-level singletons.
package app

import (
	"context"
	"errors"
	"sync"

	"internationally/internal/client"
)

type SessionState int

const (
	StateUninitialized SessionState = iota
	StateChecking
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateChecking:
		return "checking"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session owns the current user identity. It starts uninitialized, resolves
// to anonymous or authenticated after the startup token check, and then
// cycles between those two for the life of the process.
type Session struct {
	mu     sync.Mutex
	state  SessionState
	user   *client.UserProfile
	api    *client.Client
	notify *Notifier
}

func NewSession(api *client.Client, notify *Notifier) *Session {
	return &Session{state: StateUninitialized, api: api, notify: notify}
}

// Check validates any stored token against the profile endpoint. Any
// failure, 401 or otherwise, discards the token and resolves to anonymous;
// a broken token is useless either way.
func (s *Session) Check(ctx context.Context) {
	s.mu.Lock()
	s.state = StateChecking
	s.mu.Unlock()

	if !s.api.HasToken() {
		s.resolve(StateAnonymous, nil)
		return
	}

	profile, err := s.api.GetProfile(ctx)
	if err != nil {
		s.api.Logout()
		s.resolve(StateAnonymous, nil)
		return
	}
	s.resolve(StateAuthenticated, profile)
}

// Login authenticates and reports success. Failures are surfaced through
// the notifier, never raised; callers branch on the bool.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.notify.ShowError(UserMessage(err))
		return false
	}
	s.resolve(StateAuthenticated, &resp.User)
	return true
}

// Signup creates an account. Failures are surfaced through the notifier and
// returned; the caller owns what happens next (stay on the form, navigate).
func (s *Session) Signup(ctx context.Context, req client.SignupRequest) (*client.AuthResponse, error) {
	resp, err := s.api.Signup(ctx, req)
	if err != nil {
		s.notify.ShowError(UserMessage(err))
		return nil, err
	}
	s.resolve(StateAuthenticated, &resp.User)
	return resp, nil
}

// Logout drops the token and the cached user. Local only, synchronous.
func (s *Session) Logout() {
	s.api.Logout()
	s.resolve(StateAnonymous, nil)
}

// Expire reacts to a session-expired signal from any call: the client has
// already deleted the token, this clears the cached identity.
func (s *Session) Expire() {
	s.resolve(StateAnonymous, nil)
}

// ReportError surfaces err through the notifier and downgrades the session
// when the error signals expiry.
func (s *Session) ReportError(err error) {
	s.notify.ShowError(UserMessage(err))
	if errors.Is(err, client.ErrSessionExpired) {
		s.Expire()
	}
}

// SetUser replaces the cached profile copy after a successful update call.
func (s *Session) SetUser(u *client.UserProfile) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the cached profile, or nil when not authenticated.
func (s *Session) User() *client.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Initialized reports whether the startup check has resolved.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAnonymous || s.state == StateAuthenticated
}

func (s *Session) resolve(state SessionState, user *client.UserProfile) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}

// UserMessage maps an error to the text shown in the banner. Structured
// server messages are surfaced verbatim; everything else gets a generic
// line so raw transport detail never reaches the user.
func UserMessage(err error) string {
	if errors.Is(err, client.ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}
	if errors.Is(err, client.ErrNoToken) {
		return "Please log in first."
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Something went wrong. Please check your connection and try again."
}
