package auditlog

import (
	"errors"
	"net/http"
)

// Domain errors for ledger operations.
var (
	ErrNotFound         = errors.New("audit log entry not found")
	ErrInvalidEventType = errors.New("unknown audit event type")
	ErrAppendFailed     = errors.New("audit log append failed")
)

// MapHTTPStatus maps ledger errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidEventType) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
