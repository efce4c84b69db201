package shared

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrSessionMissing occurs when a handler runs outside the session middleware.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// userMessage is implemented by errors whose text is safe to show to operators.
type userMessage interface {
	UserMessage() string
}

// UserSafeMessage turns an error into text suitable for a flash message.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessage
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The request took too long. Please try again."
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	}
	return "Something went wrong. Please try again."
}
