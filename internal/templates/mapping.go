package templates

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "templates", "t").
	Project("id", "ID").
	Project("title", "Title").
	Project("owner_id", "OwnerID").
	Project("team_id", "TeamID").
	Project("filename", "Filename").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for template queries.
type Filters struct {
	Title   *string    `json:"title,omitempty"`
	OwnerID *uuid.UUID `json:"owner_id,omitempty"`
	TeamID  *uuid.UUID `json:"team_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Title", f.Title).
		WhereEquals("OwnerID", f.OwnerID).
		WhereEquals("TeamID", f.TeamID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	if o := values.Get("owner_id"); o != "" {
		if v, err := uuid.Parse(o); err == nil {
			f.OwnerID = &v
		}
	}

	if tm := values.Get("team_id"); tm != "" {
		if v, err := uuid.Parse(tm); err == nil {
			f.TeamID = &v
		}
	}

	return f
}

func scanTemplate(s repository.Scanner) (Template, error) {
	var t Template
	err := s.Scan(
		&t.ID,
		&t.Title,
		&t.OwnerID,
		&t.TeamID,
		&t.Filename,
		&t.SizeBytes,
		&t.PageCount,
		&t.StorageKey,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func scanPlaceholder(s repository.Scanner) (Placeholder, error) {
	var p Placeholder
	err := s.Scan(
		&p.ID,
		&p.TemplateID,
		&p.Name,
		&p.Email,
		&p.Role,
		&p.CreatedAt,
	)
	return p, err
}

func scanPlaceholderField(s repository.Scanner) (PlaceholderField, error) {
	var (
		f    PlaceholderField
		meta []byte
	)
	err := s.Scan(
		&f.ID,
		&f.TemplateID,
		&f.PlaceholderID,
		&f.Type,
		&f.Page,
		&f.Rect.X,
		&f.Rect.Y,
		&f.Rect.Width,
		&f.Rect.Height,
		&meta,
		&f.CreatedAt,
	)
	if err != nil {
		return f, err
	}
	if len(meta) > 0 {
		f.Meta = &fields.Meta{}
		if err := json.Unmarshal(meta, f.Meta); err != nil {
			return f, err
		}
	}
	return f, nil
}

func scanDirectLink(s repository.Scanner) (DirectLink, error) {
	var l DirectLink
	err := s.Scan(
		&l.ID,
		&l.TemplateID,
		&l.PlaceholderID,
		&l.Token,
		&l.Enabled,
		&l.CreatedAt,
	)
	return l, err
}

func encodeMeta(m *fields.Meta) (any, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
