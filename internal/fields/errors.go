package fields

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("field not found")
	ErrDuplicate         = errors.New("field already exists")
	ErrInvalidType       = errors.New("invalid field type")
	ErrNotCreatable      = errors.New("field type cannot be created directly")
	ErrPageInvalid       = errors.New("field page is out of range")
	ErrRectInvalid       = errors.New("field rectangle is invalid")
	ErrMetaRequired      = errors.New("field meta is required for this field type")
	ErrMetaMismatch      = errors.New("field meta type does not match field type")
	ErrMetaInvalid       = errors.New("field meta is invalid")
	ErrAlreadyInserted   = errors.New("field has already been signed")
	ErrNotInserted       = errors.New("field has not been signed")
	ErrSelectionRequired = errors.New("a value is required for this field")
	ErrInvalidSelection  = errors.New("value is not one of the declared options")
	ErrRecipientSigned   = errors.New("recipient has already signed")
	ErrDocumentClosed    = errors.New("document is completed and cannot be modified")
)

// MapHTTPStatus translates domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrAlreadyInserted),
		errors.Is(err, ErrNotInserted),
		errors.Is(err, ErrRecipientSigned),
		errors.Is(err, ErrDocumentClosed):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrNotCreatable),
		errors.Is(err, ErrPageInvalid),
		errors.Is(err, ErrRectInvalid),
		errors.Is(err, ErrMetaRequired),
		errors.Is(err, ErrMetaMismatch),
		errors.Is(err, ErrMetaInvalid),
		errors.Is(err, ErrSelectionRequired),
		errors.Is(err, ErrInvalidSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
