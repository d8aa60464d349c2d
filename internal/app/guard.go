package app

// Route is where the UI should send the user, derived purely from session
// state.
type Route int

const (
	// RouteWait shows a waiting affordance until the startup check resolves.
	RouteWait Route = iota
	// RouteLogin is the entry point for anonymous visitors.
	RouteLogin
	// RouteApp is the protected content.
	RouteApp
)

// Resolve is the route guard: wait while the session is still resolving,
// redirect to login when there is no user, otherwise let the protected
// content render.
func Resolve(s *Session) Route {
	switch s.State() {
	case StateUninitialized, StateChecking:
		return RouteWait
	case StateAuthenticated:
		return RouteApp
	default:
		return RouteLogin
	}
}
