package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"internationally/internal/client"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		state SessionState
		want  Route
	}{
		{StateUninitialized, RouteWait},
		{StateChecking, RouteWait},
		{StateAnonymous, RouteLogin},
		{StateAuthenticated, RouteApp},
	}

	for _, tc := range cases {
		t.Run(tc.state.String(), func(t *testing.T) {
			s := NewSession(nil, nil)
			s.resolve(tc.state, nil)
			assert.Equal(t, tc.want, Resolve(s))
		})
	}
}

func TestResolveFollowsExpiry(t *testing.T) {
	s := NewSession(nil, nil)
	s.resolve(StateAuthenticated, &client.UserProfile{ID: 1})
	assert.Equal(t, RouteApp, Resolve(s))

	s.Expire()
	assert.Equal(t, RouteLogin, Resolve(s))
}
