// Package fields implements the field domain for Quill. A field is a
// positioned, typed placeholder on a document page awaiting a
// recipient-supplied value; its position and size are stored as
// percentages of the page so placement survives page scaling.
package fields

import (
	"time"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/render"
)

// Field represents one placeholder on a document page. Inserted flips
// to true when the owning recipient signs the field; CustomText holds
// the serialized resolved value (comma-joined for checkbox fields).
type Field struct {
	ID          uuid.UUID   `json:"id"`
	DocumentID  uuid.UUID   `json:"document_id"`
	RecipientID uuid.UUID   `json:"recipient_id"`
	Type        Type        `json:"type"`
	Page        int         `json:"page"`
	Rect        render.Rect `json:"rect"`
	Inserted    bool        `json:"inserted"`
	CustomText  string      `json:"custom_text"`
	Meta        *Meta       `json:"field_meta,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Signature is the resolved drawable payload for a signed
// signature-family field, owned 1:1 by the field that produced it and
// destroyed when the field is unsigned.
type Signature struct {
	ID          uuid.UUID `json:"id"`
	FieldID     uuid.UUID `json:"field_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	ImageBase64 *string   `json:"image_base64,omitempty"`
	TypedText   *string   `json:"typed_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to place a new field.
type CreateCommand struct {
	DocumentID  uuid.UUID   `json:"document_id"`
	RecipientID uuid.UUID   `json:"recipient_id"`
	Type        Type        `json:"type"`
	Page        int         `json:"page"`
	Rect        render.Rect `json:"rect"`
	Meta        *Meta       `json:"field_meta,omitempty"`
}

// UpdateCommand carries the repositioning attributes of an unsigned field.
type UpdateCommand struct {
	Page int         `json:"page"`
	Rect render.Rect `json:"rect"`
}

// SignCommand carries a recipient-supplied value for a field. Image is
// a base64 PNG for drawn signatures; Text covers every other payload
// including typed signatures.
type SignCommand struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}
