package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors mapped onto status codes by RespondError.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("could not validate credentials")
)

// Error carries a client-facing detail alongside one of the sentinels.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Detail }
func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of kind with a fixed detail.
func Errorf(kind error, detail string) error {
	return &Error{Kind: kind, Detail: detail}
}

// RespondError writes err as a detail body with the matching status.
func RespondError(w http.ResponseWriter, err error) {
	detail := err.Error()
	var e *Error
	if errors.As(err, &e) {
		detail = e.Detail
	}
	switch {
	case errors.Is(err, ErrNotFound):
		Detail(w, http.StatusNotFound, detail)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrValidation):
		Detail(w, http.StatusBadRequest, detail)
	case errors.Is(err, ErrForbidden):
		Detail(w, http.StatusForbidden, detail)
	case errors.Is(err, ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		Detail(w, http.StatusUnauthorized, "Could not validate credentials")
	default:
		Detail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
