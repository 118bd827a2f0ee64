package templates

import (
	"context"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/pkg/pagination"
)

// System defines the public contract for template domain operations.
type System interface {
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Template], error)

	Find(ctx context.Context, id uuid.UUID) (*Detail, error)
	Create(ctx context.Context, cmd CreateCommand) (*Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Duplicate(ctx context.Context, id uuid.UUID) (*Template, error)

	AddPlaceholder(ctx context.Context, templateID uuid.UUID, cmd PlaceholderCommand) (*Placeholder, error)
	RemovePlaceholder(ctx context.Context, templateID, id uuid.UUID) error
	AddField(ctx context.Context, templateID uuid.UUID, cmd PlaceholderFieldCommand) (*PlaceholderField, error)
	RemoveField(ctx context.Context, templateID, id uuid.UUID) error

	Generate(
		ctx context.Context,
		id uuid.UUID,
		cmd GenerateCommand,
		actor auditlog.Actor,
		req auditlog.RequestMetadata,
	) (*documents.Document, error)

	CreateDirectLink(ctx context.Context, templateID uuid.UUID, cmd DirectLinkCommand) (*DirectLink, error)
	SetDirectLinkEnabled(ctx context.Context, templateID uuid.UUID, enabled bool) (*DirectLink, error)
	DeleteDirectLink(ctx context.Context, templateID uuid.UUID) error

	InstantiateDirect(
		ctx context.Context,
		token string,
		visitor RecipientOverride,
		req auditlog.RequestMetadata,
	) (*DirectInstance, error)
}
