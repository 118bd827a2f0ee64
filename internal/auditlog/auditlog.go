// Package auditlog implements the append-only audit ledger for Quill.
// Every mutating action on a document writes one typed entry; entries
// are never updated or deleted, and the ledger is the sole source for
// the signing certificate and compliance queries.
package auditlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable audit record. ID is a global insertion
// sequence number assigned by the database; ordering within a document
// is (created_at, id) so simultaneous writes still linearize.
type Entry struct {
	ID          int64           `json:"id"`
	DocumentID  uuid.UUID       `json:"document_id"`
	Type        EventType       `json:"type"`
	RecipientID *uuid.UUID      `json:"recipient_id,omitempty"`
	FieldID     *uuid.UUID      `json:"field_id,omitempty"`
	ActorName   string          `json:"actor_name"`
	ActorEmail  string          `json:"actor_email"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	IPAddress   string          `json:"ip_address"`
	UserAgent   string          `json:"user_agent"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Actor identifies who performed a mutating action: the document owner,
// a team member, or the recipient acting through their token.
type Actor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RequestMetadata carries the compliance metadata captured from the
// originating HTTP request.
type RequestMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// AppendCommand carries the data for one new ledger entry. The payload
// must be one of the typed payload structs in events.go.
type AppendCommand struct {
	DocumentID  uuid.UUID
	Type        EventType
	RecipientID *uuid.UUID
	FieldID     *uuid.UUID
	ActorName   string
	ActorEmail  string
	Payload     any
	Request     RequestMetadata
}

// GroupByEmail buckets entries by actor email, preserving entry order
// within each bucket.
func GroupByEmail(entries []Entry) map[string][]Entry {
	grouped := make(map[string][]Entry)
	for _, e := range entries {
		grouped[e.ActorEmail] = append(grouped[e.ActorEmail], e)
	}
	return grouped
}
