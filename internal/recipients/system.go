package recipients

import (
	"context"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
)

// System defines the public contract for recipient domain operations.
// Mutations are owner-scoped; token resolution serves the signing
// surface.
type System interface {
	ListForDocument(ctx context.Context, documentID uuid.UUID) ([]Recipient, error)
	Find(ctx context.Context, documentID, id uuid.UUID) (*Recipient, error)
	FindByToken(ctx context.Context, token string) (*Recipient, error)

	Create(
		ctx context.Context,
		cmd CreateCommand,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*Recipient, error)

	Update(
		ctx context.Context,
		documentID, id uuid.UUID,
		cmd UpdateCommand,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*Recipient, error)

	Delete(
		ctx context.Context,
		documentID, id uuid.UUID,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) error
}
