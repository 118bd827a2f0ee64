package recipients

import (
	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "recipients", "r").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("name", "Name").
	Project("email", "Email").
	Project("role", "Role").
	Project("signing_status", "SigningStatus").
	Project("send_status", "SendStatus").
	Project("token", "Token").
	Project("auth_required", "AuthRequired").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Recipients list in insertion order; the certificate composer depends
// on this order being stable across repeated queries, so ties on the
// creation timestamp break on the id.
var defaultSort = []query.SortField{
	{Field: "CreatedAt"},
	{Field: "ID"},
}

func scanRecipient(s repository.Scanner) (Recipient, error) {
	var r Recipient
	err := s.Scan(
		&r.ID,
		&r.DocumentID,
		&r.Name,
		&r.Email,
		&r.Role,
		&r.SigningStatus,
		&r.SendStatus,
		&r.Token,
		&r.AuthRequired,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
