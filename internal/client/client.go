// Package client is the typed HTTP client for the InternationAlly API. It
// serializes each operation as one JSON request, normalizes failures into
// typed errors, and owns the stored bearer token: saved on login/signup,
// attached to authenticated calls, deleted on logout or a 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UserProfile mirrors the server's user object.
type UserProfile struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	University         string    `json:"university,omitempty"`
	StudentStatus      string    `json:"studentStatus,omitempty"`
	VisaType           string    `json:"visaType,omitempty"`
	HousingPreferences string    `json:"housingPreferences,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ProfileUpdate carries only the fields to change; nil fields are omitted
// from the request body.
type ProfileUpdate struct {
	FirstName          *string `json:"firstName,omitempty"`
	LastName           *string `json:"lastName,omitempty"`
	University         *string `json:"university,omitempty"`
	StudentStatus      *string `json:"studentStatus,omitempty"`
	VisaType           *string `json:"visaType,omitempty"`
	HousingPreferences *string `json:"housingPreferences,omitempty"`
}

type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

// reply tolerates both field names the backend has used for the answer.
func (r chatResponse) reply() string {
	if r.Response != "" {
		return r.Response
	}
	return r.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// New builds a client against baseURL. Requests are single attempts with no
// retries and no timeout; cancellation is the caller's context.
func New(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		tokens:     tokens,
	}
}

// HasToken reports whether a token is currently stored.
func (c *Client) HasToken() bool {
	token, err := c.tokens.Load()
	return err == nil && token != ""
}

// Logout deletes the stored token. Purely local, no server round-trip.
func (c *Client) Logout() {
	c.tokens.Clear()
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", body, false, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return &resp, nil
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/signup", req, false, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetProfile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, http.MethodPut, "/api/profile", upd, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SendChatMessage posts one message and returns the assistant's reply. A
// success:false body is reported as an *APIError just like a non-2xx status.
func (c *Client) SendChatMessage(ctx context.Context, message string) (string, error) {
	body := map[string]string{"message": message}
	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, true, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "The advisor could not answer that. Please try again."
		}
		return "", &APIError{Status: http.StatusOK, Message: msg}
	}
	return resp.reply(), nil
}

// do runs one request. Authenticated calls fail with ErrNoToken before any
// network activity when no token is stored, and delete the token on a 401.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, authed bool, out interface{}) error {
	var token string
	if authed {
		var err error
		token, err = c.tokens.Load()
		if err != nil {
			return fmt.Errorf("failed to read stored token: %w", err)
		}
		if token == "" {
			return ErrNoToken
		}
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// A 401 on an authenticated call means the token is dead; discard it so
	// the next call fails fast with ErrNoToken. A 401 on login/signup is an
	// ordinary error with a server message.
	if resp.StatusCode == http.StatusUnauthorized && authed {
		c.tokens.Clear()
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := "Something went wrong. Please try again."
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
