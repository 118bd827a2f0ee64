package fields

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/recipients"
	"github.com/quill-sign/quill/internal/render"
	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a field repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "fields"),
	}
}

func (r *repo) ListForDocument(ctx context.Context, documentID uuid.UUID) ([]Field, error) {
	return ForDocument(ctx, r.db, documentID)
}

func (r *repo) Find(ctx context.Context, documentID, id uuid.UUID) (*Field, error) {
	return ByID(ctx, r.db, documentID, id)
}

func (r *repo) Create(
	ctx context.Context,
	cmd CreateCommand,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*Field, error) {
	if _, err := ParseType(string(cmd.Type)); err != nil {
		return nil, err
	}
	if !cmd.Type.Creatable() {
		return nil, fmt.Errorf("%w: %s", ErrNotCreatable, cmd.Type)
	}
	if !cmd.Rect.Valid() {
		return nil, ErrRectInvalid
	}
	if err := cmd.Meta.Validate(cmd.Type); err != nil {
		return nil, err
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Field, error) {
		pages, err := guardDocumentOpen(ctx, tx, cmd.DocumentID)
		if err != nil {
			return Field{}, err
		}
		if cmd.Page < 1 || cmd.Page > pages {
			return Field{}, fmt.Errorf("%w: page %d of %d", ErrPageInvalid, cmd.Page, pages)
		}
		if err := guardRecipientUnsigned(ctx, tx, cmd.DocumentID, cmd.RecipientID); err != nil {
			return Field{}, err
		}

		meta, err := encodeMeta(cmd.Meta)
		if err != nil {
			return Field{}, err
		}

		q := `
			INSERT INTO fields(id, document_id, recipient_id, type, page, position_x, position_y, width, height, field_meta)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING ` + returningColumns

		args := []any{
			uuid.New(),
			cmd.DocumentID,
			cmd.RecipientID,
			cmd.Type,
			cmd.Page,
			cmd.Rect.X,
			cmd.Rect.Y,
			cmd.Rect.Width,
			cmd.Rect.Height,
			meta,
		}

		f, err := repository.QueryOne(ctx, tx, q, args, scanField)
		if err != nil {
			return Field{}, err
		}

		return f, appendFieldEvent(ctx, tx, auditlog.EventFieldCreated, f, actor, req)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("field created", "id", f.ID, "document", f.DocumentID, "type", f.Type, "page", f.Page)
	return &f, nil
}

func (r *repo) Update(
	ctx context.Context,
	documentID, id uuid.UUID,
	cmd UpdateCommand,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*Field, error) {
	if !cmd.Rect.Valid() {
		return nil, ErrRectInvalid
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Field, error) {
		pages, err := guardDocumentOpen(ctx, tx, documentID)
		if err != nil {
			return Field{}, err
		}
		if cmd.Page < 1 || cmd.Page > pages {
			return Field{}, fmt.Errorf("%w: page %d of %d", ErrPageInvalid, cmd.Page, pages)
		}

		current, err := ByID(ctx, tx, documentID, id)
		if err != nil {
			return Field{}, err
		}
		if current.Inserted {
			return Field{}, ErrAlreadyInserted
		}
		if err := guardRecipientUnsigned(ctx, tx, documentID, current.RecipientID); err != nil {
			return Field{}, err
		}

		q := `
			UPDATE fields
			SET page = $1, position_x = $2, position_y = $3, width = $4, height = $5, updated_at = now()
			WHERE id = $6 AND document_id = $7
			RETURNING ` + returningColumns

		args := []any{cmd.Page, cmd.Rect.X, cmd.Rect.Y, cmd.Rect.Width, cmd.Rect.Height, id, documentID}
		f, err := repository.QueryOne(ctx, tx, q, args, scanField)
		if err != nil {
			return Field{}, err
		}

		return f, appendFieldEvent(ctx, tx, auditlog.EventFieldUpdated, f, actor, req)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("field updated", "id", f.ID, "document", f.DocumentID, "page", f.Page)
	return &f, nil
}

func (r *repo) Delete(
	ctx context.Context,
	documentID, id uuid.UUID,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := guardDocumentOpen(ctx, tx, documentID); err != nil {
			return struct{}{}, err
		}

		current, err := ByID(ctx, tx, documentID, id)
		if err != nil {
			return struct{}{}, err
		}
		if current.Inserted {
			return struct{}{}, ErrAlreadyInserted
		}
		if err := guardRecipientUnsigned(ctx, tx, documentID, current.RecipientID); err != nil {
			return struct{}{}, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM fields WHERE id = $1 AND document_id = $2",
			id, documentID,
		); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, appendFieldEvent(ctx, tx, auditlog.EventFieldDeleted, *current, actor, req)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("field deleted", "id", id, "document", documentID)
	return nil
}

const returningColumns = `id, document_id, recipient_id, type, page, position_x, position_y, width, height, inserted, custom_text, field_meta, created_at, updated_at`

// guardDocumentOpen locks the document row, rejects mutation once the
// document has completed, and returns the page count for placement
// bounds checks. The row lock serializes all field mutations per
// document.
func guardDocumentOpen(ctx context.Context, q repository.Querier, documentID uuid.UUID) (int, error) {
	var (
		status string
		pages  int
	)
	row := q.QueryRowContext(
		ctx,
		"SELECT status, page_count FROM documents WHERE id = $1 FOR UPDATE",
		documentID,
	)
	if err := row.Scan(&status, &pages); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
		}
		return 0, err
	}
	if status == "COMPLETED" {
		return 0, ErrDocumentClosed
	}
	return pages, nil
}

// guardRecipientUnsigned rejects placement changes against a recipient
// who has already signed.
func guardRecipientUnsigned(ctx context.Context, q repository.Querier, documentID, recipientID uuid.UUID) error {
	rec, err := recipients.ByID(ctx, q, documentID, recipientID)
	if err != nil {
		if errors.Is(err, recipients.ErrNotFound) {
			return fmt.Errorf("recipient %s: %w", recipientID, ErrNotFound)
		}
		return err
	}
	if rec.SigningStatus == recipients.Signed {
		return ErrRecipientSigned
	}
	return nil
}

func appendFieldEvent(
	ctx context.Context,
	q repository.Querier,
	event auditlog.EventType,
	f Field,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) error {
	_, err := auditlog.Append(ctx, q, auditlog.AppendCommand{
		DocumentID:  f.DocumentID,
		Type:        event,
		RecipientID: &f.RecipientID,
		FieldID:     &f.ID,
		ActorName:   actor.Name,
		ActorEmail:  actor.Email,
		Payload: auditlog.FieldPayload{
			FieldID:     f.ID,
			FieldType:   string(f.Type),
			RecipientID: f.RecipientID,
		},
		Request: req,
	})
	return err
}

// Insert writes a field row, bypassing the document guards. Template
// instantiation uses it inside its own transaction; API-surface
// creation goes through Create.
func Insert(
	ctx context.Context,
	q repository.Querier,
	documentID, recipientID uuid.UUID,
	fieldType Type,
	page int,
	rect render.Rect,
	meta *Meta,
) (*Field, error) {
	encoded, err := encodeMeta(meta)
	if err != nil {
		return nil, err
	}

	sqlq := `
		INSERT INTO fields(id, document_id, recipient_id, type, page, position_x, position_y, width, height, field_meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + returningColumns

	args := []any{
		uuid.New(), documentID, recipientID, fieldType,
		page, rect.X, rect.Y, rect.Width, rect.Height, encoded,
	}
	f, err := repository.QueryOne(ctx, q, sqlq, args, scanField)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

// ForDocument returns a document's fields in stable placement order.
func ForDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Field, error) {
	sqlq, args := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("DocumentID", &documentID).
		Build()

	return repository.QueryMany(ctx, q, sqlq, args, scanField)
}

// ForRecipient returns the fields assigned to one recipient of a
// document.
func ForRecipient(ctx context.Context, q repository.Querier, documentID, recipientID uuid.UUID) ([]Field, error) {
	sqlq, args := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("DocumentID", &documentID).
		WhereEquals("RecipientID", &recipientID).
		Build()

	return repository.QueryMany(ctx, q, sqlq, args, scanField)
}

// ByID returns one field scoped to a document.
func ByID(ctx context.Context, q repository.Querier, documentID, id uuid.UUID) (*Field, error) {
	sqlq, args := query.
		NewBuilder(projection).
		WhereEquals("ID", &id).
		WhereEquals("DocumentID", &documentID).
		BuildSingleOrNull()

	f, err := repository.QueryOne(ctx, q, sqlq, args, scanField)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

// SetValue marks a field inserted with its resolved text.
func SetValue(ctx context.Context, e repository.Executor, id uuid.UUID, text string) error {
	return repository.ExecExpectOne(
		ctx, e,
		"UPDATE fields SET inserted = true, custom_text = $1, updated_at = now() WHERE id = $2",
		text, id,
	)
}

// ClearValue reverts a field to its unsigned state.
func ClearValue(ctx context.Context, e repository.Executor, id uuid.UUID) error {
	return repository.ExecExpectOne(
		ctx, e,
		"UPDATE fields SET inserted = false, custom_text = '', updated_at = now() WHERE id = $1",
		id,
	)
}

// InsertSignature stores the drawable payload for a signed
// signature-family field.
func InsertSignature(
	ctx context.Context,
	q repository.Querier,
	fieldID, recipientID uuid.UUID,
	image, typed *string,
) (*Signature, error) {
	sqlq := `
		INSERT INTO signatures(id, field_id, recipient_id, image_base64, typed_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, field_id, recipient_id, image_base64, typed_text, created_at`

	args := []any{uuid.New(), fieldID, recipientID, image, typed}
	sig, err := repository.QueryOne(ctx, q, sqlq, args, scanSignature)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &sig, nil
}

// DeleteSignatureForField removes the payload of an unsigned field, if
// any.
func DeleteSignatureForField(ctx context.Context, e repository.Executor, fieldID uuid.UUID) error {
	_, err := e.ExecContext(ctx, "DELETE FROM signatures WHERE field_id = $1", fieldID)
	return err
}

// SignatureForField returns the drawable payload of a signed field, or
// nil when none exists.
func SignatureForField(ctx context.Context, q repository.Querier, fieldID uuid.UUID) (*Signature, error) {
	row := q.QueryRowContext(
		ctx,
		"SELECT id, field_id, recipient_id, image_base64, typed_text, created_at FROM signatures WHERE field_id = $1",
		fieldID,
	)
	sig, err := scanSignature(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sig, nil
}

// SignaturesForDocument returns every stored signature payload for a
// document keyed by field id.
func SignaturesForDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) (map[uuid.UUID]Signature, error) {
	rows, err := q.QueryContext(
		ctx,
		`SELECT s.id, s.field_id, s.recipient_id, s.image_base64, s.typed_text, s.created_at
		 FROM signatures s
		 JOIN fields f ON f.id = s.field_id
		 WHERE f.document_id = $1`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sigs := make(map[uuid.UUID]Signature)
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		sigs[sig.FieldID] = sig
	}
	return sigs, rows.Err()
}
