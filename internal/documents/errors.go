package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("document already exists")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrNotPDF          = errors.New("file is not a PDF")
	ErrInvalidStatus   = errors.New("invalid document status")
	ErrCompleted       = errors.New("document is completed and cannot be modified")
	ErrInvalidTimezone = errors.New("unknown timezone")
	ErrNotCompleted    = errors.New("document has not completed")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotCompleted):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrNotPDF),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidTimezone):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
