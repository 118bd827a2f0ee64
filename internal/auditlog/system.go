package auditlog

import (
	"context"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/pkg/pagination"
)

// System defines the public contract for ledger operations. The ledger
// is append-only: there is no update or delete surface.
type System interface {
	List(
		ctx context.Context,
		documentID uuid.UUID,
		page pagination.PageRequest,
	) (*pagination.PageResult[Entry], error)

	Latest(ctx context.Context, documentID uuid.UUID, t EventType) (*Entry, error)

	Append(ctx context.Context, cmd AppendCommand) (*Entry, error)
}
