package client

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is returned when the server answers 401. The stored
	// token has already been deleted by the time the caller sees it.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoToken is returned by authenticated operations when no token is
	// stored. No request is issued.
	ErrNoToken = errors.New("not logged in")
)

// APIError is a structured failure from the backend: a non-2xx status with
// an error message, or a success:false chat body. The message is suitable
// for showing to the user as-is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}
