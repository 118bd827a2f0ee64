package documents

import (
	"encoding/json"
	"slices"
)

// Status is the document lifecycle state. Transitions are monotonic:
// DRAFT → PENDING → COMPLETED, never backwards.
type Status string

const (
	Draft     Status = "DRAFT"
	Pending   Status = "PENDING"
	Completed Status = "COMPLETED"
)

var statuses = []Status{Draft, Pending, Completed}

// Statuses returns the list of valid document statuses.
func Statuses() []Status {
	return statuses
}

// ParseStatus validates a string as a known document status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatus
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == Completed
}
