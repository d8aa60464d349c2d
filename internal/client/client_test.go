package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "x", body["password"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "t1",
			"user":  map[string]interface{}{"id": 1, "email": "a@b.com", "firstName": "A", "lastName": "B"},
		})
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	c := New(srv.URL, tokens)

	resp, err := c.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.User.Email)

	stored, _ := tokens.Load()
	assert.Equal(t, "t1", stored)
	assert.True(t, c.HasToken())
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	c := New(srv.URL, tokens)

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	// A 401 from login means bad credentials, not an expired session; the
	// server's message reaches the caller untouched.
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.False(t, c.HasToken())
}

func TestAPIErrorMessageIsVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Email already registered"})
	}))
	defer srv.Close()

	c := New(srv.URL, &MemoryTokenStore{})
	_, err := c.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Email already registered", apiErr.Message)
}

func TestUnauthorizedClearsStoredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	calls := []func(c *Client) error{
		func(c *Client) error { _, err := c.GetProfile(context.Background()); return err },
		func(c *Client) error { _, err := c.UpdateProfile(context.Background(), ProfileUpdate{}); return err },
		func(c *Client) error { _, err := c.SendChatMessage(context.Background(), "hi"); return err },
	}

	for _, call := range calls {
		tokens := &MemoryTokenStore{}
		require.NoError(t, tokens.Save("stale"))
		c := New(srv.URL, tokens)

		err := call(c)
		assert.ErrorIs(t, err, ErrSessionExpired)
		stored, _ := tokens.Load()
		assert.Empty(t, stored, "401 must delete the stored token")
	}
}

func TestAuthedCallWithoutTokenNeverHitsNetwork(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, &MemoryTokenStore{})

	_, err := c.GetProfile(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
	university := "UChicago"
	_, err = c.UpdateProfile(context.Background(), ProfileUpdate{University: &university})
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = c.SendChatMessage(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Zero(t, requests.Load())
}

func TestSendChatMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Where can I find housing near campus?", body["message"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"response": "Try these neighborhoods: Hyde Park and Woodlawn.",
		})
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	tokens.Save("t1")
	c := New(srv.URL, tokens)

	reply, err := c.SendChatMessage(context.Background(), "Where can I find housing near campus?")
	require.NoError(t, err)
	assert.Equal(t, "Try these neighborhoods: Hyde Park and Woodlawn.", reply)
}

func TestSendChatMessageLegacyFieldName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "hello"})
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	tokens.Save("t1")
	c := New(srv.URL, tokens)

	reply, err := c.SendChatMessage(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
}

func TestSendChatMessageBusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "The advisor is unavailable right now. Please try again.",
		})
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	tokens.Save("t1")
	c := New(srv.URL, tokens)

	_, err := c.SendChatMessage(context.Background(), "hi")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Equal(t, "The advisor is unavailable right now. Please try again.", apiErr.Message)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, &MemoryTokenStore{})
	_, err := c.Login(context.Background(), "a@b.com", "x")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "network failures are not APIErrors")
}

func TestLogoutIsLocalOnly(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	tokens.Save("t1")
	c := New(srv.URL, tokens)

	c.Logout()
	assert.False(t, c.HasToken())
	assert.Zero(t, requests.Load())
}
