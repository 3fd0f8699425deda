package client

import "errors"

var (
	// ErrKicked is returned once the server pushes a session-terminated
	// notice, which happens when the same user logs in elsewhere.
	ErrKicked = errors.New("session terminated by server")

	// ErrConnectionClosed is returned when the server connection is gone.
	ErrConnectionClosed = errors.New("connection closed")
)

// RequestError is a FAILURE response from the server, carrying the
// human-readable reason.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}
