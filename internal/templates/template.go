// Package templates implements reusable document blueprints for Quill.
// A template owns a PDF blob plus placeholder recipients and fields;
// generating a document clones all of it, minting fresh access tokens
// for the concrete recipients. A direct link exposes one placeholder
// slot behind a public token so visitors can instantiate the template
// on demand.
package templates

import (
	"time"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
	"github.com/quill-sign/quill/internal/render"
)

// Template represents one reusable blueprint and its stored PDF.
type Template struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	TeamID     *uuid.UUID `json:"team_id,omitempty"`
	Filename   string     `json:"filename"`
	SizeBytes  int64      `json:"size_bytes"`
	PageCount  int        `json:"page_count"`
	StorageKey string     `json:"storage_key"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Placeholder is a recipient slot of a template. Its name and email
// are stand-ins that generation replaces with concrete values.
type Placeholder struct {
	ID         uuid.UUID       `json:"id"`
	TemplateID uuid.UUID       `json:"template_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       recipients.Role `json:"role"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PlaceholderField is a field bound to a placeholder slot.
type PlaceholderField struct {
	ID            uuid.UUID    `json:"id"`
	TemplateID    uuid.UUID    `json:"template_id"`
	PlaceholderID uuid.UUID    `json:"placeholder_id"`
	Type          fields.Type  `json:"type"`
	Page          int          `json:"page"`
	Rect          render.Rect  `json:"rect"`
	Meta          *fields.Meta `json:"field_meta,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// DirectLink is the optional public entry point of a template: one
// ULID token bound to one placeholder slot, instantiating a document
// for whoever visits it while enabled.
type DirectLink struct {
	ID            uuid.UUID `json:"id"`
	TemplateID    uuid.UUID `json:"template_id"`
	PlaceholderID uuid.UUID `json:"placeholder_id"`
	Token         string    `json:"token"`
	Enabled       bool      `json:"enabled"`
	CreatedAt     time.Time `json:"created_at"`
}

// Detail is a template with its placeholder graph.
type Detail struct {
	Template
	Placeholders []Placeholder      `json:"placeholders"`
	Fields       []PlaceholderField `json:"fields"`
	DirectLink   *DirectLink        `json:"direct_link,omitempty"`
}

// CreateCommand carries the data needed to upload and register a new
// template.
type CreateCommand struct {
	Data      []byte
	Title     string
	Filename  string
	OwnerID   uuid.UUID
	TeamID    *uuid.UUID
	PageCount int
}

// PlaceholderCommand adds a recipient slot to a template.
type PlaceholderCommand struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  recipients.Role `json:"role"`
}

// PlaceholderFieldCommand binds a field to a placeholder slot.
type PlaceholderFieldCommand struct {
	PlaceholderID uuid.UUID    `json:"placeholder_id"`
	Type          fields.Type  `json:"type"`
	Page          int          `json:"page"`
	Rect          render.Rect  `json:"rect"`
	Meta          *fields.Meta `json:"field_meta,omitempty"`
}

// RecipientOverride replaces a placeholder's stand-in identity during
// generation.
type RecipientOverride struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GenerateCommand instantiates a document from a template. Overrides
// apply positionally to the template's placeholders; missing entries
// keep the placeholder's stand-in identity.
type GenerateCommand struct {
	Title      string              `json:"title"`
	Recipients []RecipientOverride `json:"recipients"`
}

// DirectLinkCommand creates or retargets a template's direct link.
type DirectLinkCommand struct {
	PlaceholderID uuid.UUID `json:"placeholder_id"`
}
