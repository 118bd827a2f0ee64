package recipients

import (
	"errors"
	"net/http"
)

// Domain errors for recipient operations.
var (
	ErrNotFound       = errors.New("recipient not found")
	ErrTokenNotFound  = errors.New("no recipient matches the access token")
	ErrDuplicate      = errors.New("recipient email already exists on this document")
	ErrInvalidRole    = errors.New("unknown recipient role")
	ErrAlreadySigned  = errors.New("recipient has already signed the document")
	ErrFieldsPending  = errors.New("recipient still has uninserted fields")
	ErrInvalidEmail   = errors.New("recipient email is required")
	ErrDocumentClosed = errors.New("document is already completed")
)

// MapHTTPStatus maps recipient domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadySigned),
		errors.Is(err, ErrFieldsPending),
		errors.Is(err, ErrDocumentClosed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
