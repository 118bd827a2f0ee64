package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/pkg/pagination"
	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a ledger repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "auditlog"),
		pagination: pagination,
	}
}

func (r *repo) List(
	ctx context.Context,
	documentID uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("DocumentID", &documentID)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Latest(ctx context.Context, documentID uuid.UUID, t EventType) (*Entry, error) {
	return LatestOfType(ctx, r.db, documentID, t)
}

func (r *repo) Append(ctx context.Context, cmd AppendCommand) (*Entry, error) {
	return Append(ctx, r.db, cmd)
}

const insertEntry = `
	INSERT INTO document_audit_logs(document_id, type, recipient_id, field_id, actor_name, actor_email, payload, ip_address, user_agent)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, document_id, type, recipient_id, field_id, actor_name, actor_email, payload, ip_address, user_agent, created_at`

// Append writes one ledger entry through the given querier. Callers
// performing a state transition pass their transaction so the entry
// commits atomically with the mutation it describes; a failed append
// aborts the whole transition.
func Append(ctx context.Context, q repository.Querier, cmd AppendCommand) (*Entry, error) {
	payload, err := json.Marshal(cmd.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %v", ErrAppendFailed, err)
	}

	args := []any{
		cmd.DocumentID,
		cmd.Type,
		cmd.RecipientID,
		cmd.FieldID,
		cmd.ActorName,
		cmd.ActorEmail,
		payload,
		cmd.Request.IPAddress,
		cmd.Request.UserAgent,
	}

	e, err := repository.QueryOne(ctx, q, insertEntry, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppendFailed, err)
	}
	return &e, nil
}

// LatestOfType returns the most recent entry of the given type for a
// document, or nil when none exists.
func LatestOfType(
	ctx context.Context,
	q repository.Querier,
	documentID uuid.UUID,
	t EventType,
) (*Entry, error) {
	sqlq, args := query.
		NewBuilder(projection, query.SortField{Field: "ID", Descending: true}).
		WhereEquals("DocumentID", &documentID).
		WhereEquals("Type", &t).
		BuildPage(1, 1)

	e, err := repository.QueryOne(ctx, q, sqlq, args, scanEntry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// OfType returns every entry of the given type for a document in
// ledger order. Use GroupByEmail to bucket the result per recipient.
func OfType(
	ctx context.Context,
	q repository.Querier,
	documentID uuid.UUID,
	t EventType,
) ([]Entry, error) {
	sqlq, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("DocumentID", &documentID).
		WhereEquals("Type", &t).
		Build()

	return repository.QueryMany(ctx, q, sqlq, args, scanEntry)
}
