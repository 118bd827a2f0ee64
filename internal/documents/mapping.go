package documents

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("title", "Title").
	Project("status", "Status").
	Project("owner_id", "OwnerID").
	Project("team_id", "TeamID").
	Project("filename", "Filename").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("completed_storage_key", "CompletedStorageKey").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Status, OwnerID, and TeamID use exact
// matching; Title uses case-insensitive contains matching.
type Filters struct {
	Status  *string    `json:"status,omitempty"`
	Title   *string    `json:"title,omitempty"`
	OwnerID *uuid.UUID `json:"owner_id,omitempty"`
	TeamID  *uuid.UUID `json:"team_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Title", f.Title).
		WhereEquals("OwnerID", f.OwnerID).
		WhereEquals("TeamID", f.TeamID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

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

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Title,
		&d.Status,
		&d.OwnerID,
		&d.TeamID,
		&d.Filename,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.CompletedStorageKey,
		&d.CompletedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func scanMeta(s repository.Scanner) (Meta, error) {
	var m Meta
	err := s.Scan(
		&m.DocumentID,
		&m.Subject,
		&m.Message,
		&m.Timezone,
		&m.DateFormat,
		&m.RedirectURL,
		&m.Password,
	)
	return m, err
}
