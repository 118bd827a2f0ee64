// Package signing implements the document signing state machine for
// Quill. Every operation runs inside a single transaction holding the
// document row lock, so concurrent signers of the same document
// serialize, and its audit entry commits atomically with the mutation.
package signing

import (
	"context"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
)

// View is the recipient-facing projection of a document served on the
// token surface. It exposes only the data the token's recipient needs:
// their own fields and the parts of the metadata meant for them.
type View struct {
	Document  ViewDocument         `json:"document"`
	Recipient recipients.Recipient `json:"recipient"`
	Fields    []fields.Field       `json:"fields"`
}

// ViewDocument is the subset of a document visible to a recipient.
type ViewDocument struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Status      documents.Status `json:"status"`
	PageCount   int              `json:"page_count"`
	Subject     string           `json:"subject,omitempty"`
	Message     string           `json:"message,omitempty"`
	RedirectURL string           `json:"redirect_url,omitempty"`
}

// System defines the signing state machine contract. Token-scoped
// methods act as the token's recipient; document-scoped methods act as
// the document owner.
type System interface {
	Open(ctx context.Context, token, password string, req auditlog.RequestMetadata) (*View, error)

	SignField(
		ctx context.Context,
		token string,
		fieldID uuid.UUID,
		cmd fields.SignCommand,
		req auditlog.RequestMetadata,
	) (*fields.Field, error)

	UnsignField(
		ctx context.Context,
		token string,
		fieldID uuid.UUID,
		req auditlog.RequestMetadata,
	) (*fields.Field, error)

	CompleteRecipient(
		ctx context.Context,
		token string,
		req auditlog.RequestMetadata,
	) (*recipients.Recipient, error)

	SendDocument(
		ctx context.Context,
		documentID uuid.UUID,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*documents.Document, error)

	CompleteDocument(
		ctx context.Context,
		documentID uuid.UUID,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*documents.Document, error)
}
