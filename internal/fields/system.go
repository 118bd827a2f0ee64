package fields

import (
	"context"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
)

// System defines the public contract for field placement operations.
// Signing and unsigning live in the signing package; this surface only
// places, moves, and removes fields while their recipient has not
// signed.
type System interface {
	ListForDocument(ctx context.Context, documentID uuid.UUID) ([]Field, error)
	Find(ctx context.Context, documentID, id uuid.UUID) (*Field, error)

	Create(
		ctx context.Context,
		cmd CreateCommand,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*Field, error)

	Update(
		ctx context.Context,
		documentID, id uuid.UUID,
		cmd UpdateCommand,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*Field, error)

	Delete(
		ctx context.Context,
		documentID, id uuid.UUID,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) error
}
