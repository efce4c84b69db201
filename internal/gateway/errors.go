package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ConnectMessage is reported for every transport failure.
const ConnectMessage = "Unable to connect to the server. Please check your backend is running."

// Error is the single error type returned for failed backend calls.
// Status is zero when the request never produced an HTTP response.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %v", e.Message, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("gateway: status %d: %s", e.Status, e.Message)
	}
	return "gateway: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the human readable text for flashes and inline errors.
func (e *Error) UserMessage() string { return e.Message }

// Transport reports whether the backend could not be reached at all.
func (e *Error) Transport() bool { return e.Status == 0 }

// IsTransport reports whether err is a gateway transport failure.
func IsTransport(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Transport()
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

// errorMessage extracts the most useful text from an error body.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(payload.Detail, &detail); err == nil && detail != "" {
				return detail
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(payload.Detail, &items); err == nil {
				msgs := make([]string, 0, len(items))
				for _, item := range items {
					if item.Msg != "" {
						msgs = append(msgs, item.Msg)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, "; ")
				}
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
