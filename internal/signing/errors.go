package signing

import (
	"errors"
	"net/http"

	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
)

var (
	ErrNotPending        = errors.New("document is not pending signature")
	ErrNotDraft          = errors.New("document has already been sent")
	ErrNoRecipients      = errors.New("document has no recipients")
	ErrFieldNotOwned     = errors.New("field belongs to another recipient")
	ErrRecipientsPending = errors.New("not every recipient has completed")
	ErrRoleCannotSign    = errors.New("recipient role cannot insert values")
	ErrRoleCannotFinish  = errors.New("recipient role has no completion action")
	ErrPasswordRequired  = errors.New("document password required")
	ErrPasswordInvalid   = errors.New("document password is incorrect")
)

// MapHTTPStatus translates state machine errors, falling through to
// the owning domain's mapping when the error originated there.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotPending),
		errors.Is(err, ErrNotDraft),
		errors.Is(err, ErrRecipientsPending):
		return http.StatusConflict
	case errors.Is(err, ErrNoRecipients),
		errors.Is(err, ErrFieldNotOwned),
		errors.Is(err, ErrRoleCannotSign),
		errors.Is(err, ErrRoleCannotFinish):
		return http.StatusBadRequest
	case errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordInvalid):
		return http.StatusUnauthorized
	}

	for _, mapper := range []func(error) int{
		recipients.MapHTTPStatus,
		fields.MapHTTPStatus,
		documents.MapHTTPStatus,
	} {
		if status := mapper(err); status != http.StatusInternalServerError {
			return status
		}
	}
	return http.StatusInternalServerError
}
