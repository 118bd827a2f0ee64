package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	FindMeta(ctx context.Context, id uuid.UUID) (*Meta, error)
	Download(ctx context.Context, id uuid.UUID, completed bool) ([]byte, *Document, error)

	Create(
		ctx context.Context,
		cmd CreateCommand,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*Document, error)

	UpsertMeta(ctx context.Context, id uuid.UUID, cmd MetaCommand) (*Meta, error)

	Duplicate(
		ctx context.Context,
		id uuid.UUID,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*Document, error)

	Delete(
		ctx context.Context,
		id uuid.UUID,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) error
}
