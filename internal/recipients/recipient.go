// Package recipients implements the recipient domain for Quill.
// A recipient is a party with a role and token-scoped access to act on
// a subset of a document's fields.
package recipients

import (
	"time"

	"github.com/google/uuid"
)

// SigningStatus tracks a recipient's progress on a document.
type SigningStatus string

const (
	NotSigned SigningStatus = "NOT_SIGNED"
	Signed    SigningStatus = "SIGNED"
)

// SendStatus tracks whether the signing request went out to the recipient.
type SendStatus string

const (
	NotSent SendStatus = "NOT_SENT"
	Sent    SendStatus = "SENT"
)

// Recipient represents a party acting on a document. Token is the
// unguessable access credential for the signing surface; (DocumentID,
// Email) is unique per document. Once SigningStatus reaches Signed the
// recipient's email and role become immutable.
type Recipient struct {
	ID            uuid.UUID     `json:"id"`
	DocumentID    uuid.UUID     `json:"document_id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	SigningStatus SigningStatus `json:"signing_status"`
	SendStatus    SendStatus    `json:"send_status"`
	Token         string        `json:"token"`
	AuthRequired  *string       `json:"auth_required,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateCommand carries the data needed to add a recipient to a document.
type CreateCommand struct {
	DocumentID   uuid.UUID `json:"document_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	AuthRequired *string   `json:"auth_required,omitempty"`
}

// UpdateCommand carries the mutable recipient attributes. Updates are
// rejected once the recipient has signed.
type UpdateCommand struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
