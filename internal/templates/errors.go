package templates

import (
	"errors"
	"net/http"

	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
)

var (
	ErrNotFound            = errors.New("template not found")
	ErrDuplicate           = errors.New("template already exists")
	ErrPlaceholderNotFound = errors.New("placeholder not found")
	ErrFieldNotFound       = errors.New("template field not found")
	ErrDirectLinkExists    = errors.New("template already has a direct link")
	ErrDirectLinkNotFound  = errors.New("direct link not found")
	ErrDirectLinkDisabled  = errors.New("direct link is disabled")
	ErrInvalidFile         = errors.New("invalid file")
	ErrFileTooLarge        = errors.New("file exceeds maximum upload size")
	ErrNotPDF              = errors.New("file is not a PDF")
)

// MapHTTPStatus translates template domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPlaceholderNotFound),
		errors.Is(err, ErrFieldNotFound),
		errors.Is(err, ErrDirectLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrDirectLinkExists),
		errors.Is(err, ErrDirectLinkDisabled):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidFile), errors.Is(err, ErrNotPDF):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}

	for _, mapper := range []func(error) int{
		fields.MapHTTPStatus,
		recipients.MapHTTPStatus,
	} {
		if status := mapper(err); status != http.StatusInternalServerError {
			return status
		}
	}
	return http.StatusInternalServerError
}
