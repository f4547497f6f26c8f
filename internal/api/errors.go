package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for Quill API operations.
var (
	ErrUnauthorized = errors.New("quill: unauthorized")
	ErrNotFound     = errors.New("quill: not found")
	ErrRateLimited  = errors.New("quill: rate limited by server")
	ErrServer       = errors.New("quill: server error")
	ErrBadResponse  = errors.New("quill: unexpected response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // Operation: "listAuthors", "getAuthor", "fetchImage", "health"
	Status  int    // HTTP status, 0 when the request never completed
	Message string // Server supplied message, if any
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s [HTTP %d]: %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, status int, message string, err error) error {
	return &Error{Op: op, Status: status, Message: message, Err: err}
}

// statusError maps an HTTP status to a sentinel error
func statusError(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 429:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrBadResponse
	}
}
