// Package documents implements the document domain for Quill.
// It provides types, data access, and business logic for document
// upload, metadata management, duplication, and blob storage
// integration. The signing lifecycle itself lives in the signing
// package; this package owns the envelope record and its status.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document represents one signable envelope: a stored PDF, its
// lifecycle status, and its signing metadata. CompletedStorageKey is
// set when the final rendered blob is uploaded at completion.
type Document struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Status              Status     `json:"status"`
	OwnerID             uuid.UUID  `json:"owner_id"`
	TeamID              *uuid.UUID `json:"team_id,omitempty"`
	Filename            string     `json:"filename"`
	SizeBytes           int64      `json:"size_bytes"`
	PageCount           int        `json:"page_count"`
	StorageKey          string     `json:"storage_key"`
	CompletedStorageKey *string    `json:"completed_storage_key,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Meta carries the signing metadata of a document. Password holds a
// bcrypt hash, never the plain text; the JSON tag hides it from every
// response.
type Meta struct {
	DocumentID  uuid.UUID `json:"document_id"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Timezone    string    `json:"timezone"`
	DateFormat  string    `json:"date_format"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	Password    *string   `json:"-"`
}

// Default metadata values applied when a document carries no explicit
// meta record.
const (
	DefaultTimezone   = "Etc/UTC"
	DefaultDateFormat = "2006-01-02 3:04 PM"
)

// Defaults returns a Meta with the default timezone and date format.
func Defaults(documentID uuid.UUID) Meta {
	return Meta{
		DocumentID: documentID,
		Timezone:   DefaultTimezone,
		DateFormat: DefaultDateFormat,
	}
}

// CreateCommand carries the data needed to upload and register a new
// document. Data holds the raw PDF bytes; PageCount is extracted by
// the caller via pdfcpu.
type CreateCommand struct {
	Data      []byte
	Title     string
	Filename  string
	OwnerID   uuid.UUID
	TeamID    *uuid.UUID
	PageCount int
}

// MetaCommand carries the signing metadata upsert. Password, when
// non-nil, is the plain text to hash; an empty string clears the
// password.
type MetaCommand struct {
	Subject     string  `json:"subject"`
	Message     string  `json:"message"`
	Timezone    string  `json:"timezone"`
	DateFormat  string  `json:"date_format"`
	RedirectURL string  `json:"redirect_url"`
	Password    *string `json:"password,omitempty"`
}
