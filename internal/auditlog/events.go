package auditlog

import (
	"encoding/json"
	"slices"

	"github.com/google/uuid"
)

// EventType identifies the kind of a ledger entry. The set is closed:
// unknown values are rejected at the boundary so downstream consumers
// can branch exhaustively.
type EventType string

// Ledger event kinds.
const (
	EventDocumentCreated            EventType = "DOCUMENT_CREATED"
	EventDocumentSent               EventType = "DOCUMENT_SENT"
	EventDocumentOpened             EventType = "DOCUMENT_OPENED"
	EventDocumentCompleted          EventType = "DOCUMENT_COMPLETED"
	EventDocumentDeleted            EventType = "DOCUMENT_DELETED"
	EventDocumentRecipientCompleted EventType = "DOCUMENT_RECIPIENT_COMPLETED"
	EventFieldCreated               EventType = "FIELD_CREATED"
	EventFieldUpdated               EventType = "FIELD_UPDATED"
	EventFieldDeleted               EventType = "FIELD_DELETED"
	EventFieldInserted              EventType = "DOCUMENT_FIELD_INSERTED"
	EventFieldUninserted            EventType = "DOCUMENT_FIELD_UNINSERTED"
	EventRecipientCreated           EventType = "RECIPIENT_CREATED"
	EventRecipientUpdated           EventType = "RECIPIENT_UPDATED"
	EventRecipientDeleted           EventType = "RECIPIENT_DELETED"
)

var eventTypes = []EventType{
	EventDocumentCreated,
	EventDocumentSent,
	EventDocumentOpened,
	EventDocumentCompleted,
	EventDocumentDeleted,
	EventDocumentRecipientCompleted,
	EventFieldCreated,
	EventFieldUpdated,
	EventFieldDeleted,
	EventFieldInserted,
	EventFieldUninserted,
	EventRecipientCreated,
	EventRecipientUpdated,
	EventRecipientDeleted,
}

// EventTypes returns all valid ledger event kinds.
func EventTypes() []EventType {
	return eventTypes
}

// ParseEventType validates a string as a known event kind.
func ParseEventType(s string) (EventType, error) {
	v := EventType(s)
	if !slices.Contains(eventTypes, v) {
		return "", ErrInvalidEventType
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known event kind.
func (t *EventType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseEventType(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Typed payloads, one per event family. The Append path marshals them
// into the payload column; consumers unmarshal by entry type.

// FieldPayload describes field lifecycle events (created, updated,
// deleted, inserted, uninserted).
type FieldPayload struct {
	FieldID        uuid.UUID `json:"field_id"`
	FieldType      string    `json:"field_type"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`
	Value          string    `json:"value,omitempty"`
}

// RecipientPayload describes recipient lifecycle and completion events.
type RecipientPayload struct {
	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientRole  string    `json:"recipient_role"`
	Action         string    `json:"action,omitempty"`
}

// DocumentPayload describes document lifecycle events.
type DocumentPayload struct {
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}
