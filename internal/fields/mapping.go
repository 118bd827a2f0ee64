package fields

import (
	"encoding/json"

	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "fields", "f").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("recipient_id", "RecipientID").
	Project("type", "Type").
	Project("page", "Page").
	Project("position_x", "PositionX").
	Project("position_y", "PositionY").
	Project("width", "Width").
	Project("height", "Height").
	Project("inserted", "Inserted").
	Project("custom_text", "CustomText").
	Project("field_meta", "Meta").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Fields render in placement order; ties on creation break on the id so
// repeated renders produce identical documents.
var defaultSort = []query.SortField{
	{Field: "Page"},
	{Field: "CreatedAt"},
	{Field: "ID"},
}

func scanField(s repository.Scanner) (Field, error) {
	var (
		f    Field
		meta []byte
	)
	err := s.Scan(
		&f.ID,
		&f.DocumentID,
		&f.RecipientID,
		&f.Type,
		&f.Page,
		&f.Rect.X,
		&f.Rect.Y,
		&f.Rect.Width,
		&f.Rect.Height,
		&f.Inserted,
		&f.CustomText,
		&meta,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return f, err
	}
	if len(meta) > 0 {
		f.Meta = &Meta{}
		if err := json.Unmarshal(meta, f.Meta); err != nil {
			return f, err
		}
	}
	return f, nil
}

func scanSignature(s repository.Scanner) (Signature, error) {
	var sig Signature
	err := s.Scan(
		&sig.ID,
		&sig.FieldID,
		&sig.RecipientID,
		&sig.ImageBase64,
		&sig.TypedText,
		&sig.CreatedAt,
	)
	return sig, err
}

func encodeMeta(m *Meta) (any, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
