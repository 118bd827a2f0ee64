package auditlog

import (
	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "document_audit_logs", "a").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("type", "Type").
	Project("recipient_id", "RecipientID").
	Project("field_id", "FieldID").
	Project("actor_name", "ActorName").
	Project("actor_email", "ActorEmail").
	Project("payload", "Payload").
	Project("ip_address", "IPAddress").
	Project("user_agent", "UserAgent").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "ID"}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	err := s.Scan(
		&e.ID,
		&e.DocumentID,
		&e.Type,
		&e.RecipientID,
		&e.FieldID,
		&e.ActorName,
		&e.ActorEmail,
		&e.Payload,
		&e.IPAddress,
		&e.UserAgent,
		&e.CreatedAt,
	)
	return e, err
}
