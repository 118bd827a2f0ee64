package recipients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a recipient repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "recipients"),
	}
}

func (r *repo) ListForDocument(ctx context.Context, documentID uuid.UUID) ([]Recipient, error) {
	return ForDocument(ctx, r.db, documentID)
}

func (r *repo) Find(ctx context.Context, documentID, id uuid.UUID) (*Recipient, error) {
	return ByID(ctx, r.db, documentID, id)
}

func (r *repo) FindByToken(ctx context.Context, token string) (*Recipient, error) {
	return ByToken(ctx, r.db, token)
}

func (r *repo) Create(
	ctx context.Context,
	cmd CreateCommand,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*Recipient, error) {
	if cmd.Email == "" {
		return nil, ErrInvalidEmail
	}
	if _, err := ParseRole(string(cmd.Role)); err != nil {
		return nil, err
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Recipient, error) {
		if err := guardDocumentOpen(ctx, tx, cmd.DocumentID); err != nil {
			return Recipient{}, err
		}

		q := `
			INSERT INTO recipients(id, document_id, name, email, role, token, auth_required)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + returningColumns

		args := []any{
			uuid.New(),
			cmd.DocumentID,
			cmd.Name,
			cmd.Email,
			cmd.Role,
			NewToken(),
			cmd.AuthRequired,
		}

		rec, err := repository.QueryOne(ctx, tx, q, args, scanRecipient)
		if err != nil {
			return Recipient{}, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID:  cmd.DocumentID,
			Type:        auditlog.EventRecipientCreated,
			RecipientID: &rec.ID,
			ActorName:   actor.Name,
			ActorEmail:  actor.Email,
			Payload: auditlog.RecipientPayload{
				RecipientID:    rec.ID,
				RecipientEmail: rec.Email,
				RecipientRole:  string(rec.Role),
			},
			Request: req,
		})
		return rec, err
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("recipient created", "id", rec.ID, "document", rec.DocumentID, "role", rec.Role)
	return &rec, nil
}

func (r *repo) Update(
	ctx context.Context,
	documentID, id uuid.UUID,
	cmd UpdateCommand,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*Recipient, error) {
	if _, err := ParseRole(string(cmd.Role)); err != nil {
		return nil, err
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Recipient, error) {
		if err := guardDocumentOpen(ctx, tx, documentID); err != nil {
			return Recipient{}, err
		}

		current, err := ByID(ctx, tx, documentID, id)
		if err != nil {
			return Recipient{}, err
		}
		if current.SigningStatus == Signed {
			return Recipient{}, ErrAlreadySigned
		}

		q := `
			UPDATE recipients
			SET name = $1, email = $2, role = $3, updated_at = now()
			WHERE id = $4 AND document_id = $5
			RETURNING ` + returningColumns

		args := []any{cmd.Name, cmd.Email, cmd.Role, id, documentID}
		rec, err := repository.QueryOne(ctx, tx, q, args, scanRecipient)
		if err != nil {
			return Recipient{}, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID:  documentID,
			Type:        auditlog.EventRecipientUpdated,
			RecipientID: &rec.ID,
			ActorName:   actor.Name,
			ActorEmail:  actor.Email,
			Payload: auditlog.RecipientPayload{
				RecipientID:    rec.ID,
				RecipientEmail: rec.Email,
				RecipientRole:  string(rec.Role),
			},
			Request: req,
		})
		return rec, err
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("recipient updated", "id", rec.ID, "document", rec.DocumentID)
	return &rec, nil
}

func (r *repo) Delete(
	ctx context.Context,
	documentID, id uuid.UUID,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := guardDocumentOpen(ctx, tx, documentID); err != nil {
			return struct{}{}, err
		}

		current, err := ByID(ctx, tx, documentID, id)
		if err != nil {
			return struct{}{}, err
		}
		if current.SigningStatus == Signed {
			return struct{}{}, ErrAlreadySigned
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM recipients WHERE id = $1 AND document_id = $2",
			id, documentID,
		); err != nil {
			return struct{}{}, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID: documentID,
			Type:       auditlog.EventRecipientDeleted,
			ActorName:  actor.Name,
			ActorEmail: actor.Email,
			Payload: auditlog.RecipientPayload{
				RecipientID:    current.ID,
				RecipientEmail: current.Email,
				RecipientRole:  string(current.Role),
			},
			Request: req,
		})
		return struct{}{}, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("recipient deleted", "id", id, "document", documentID)
	return nil
}

const returningColumns = `id, document_id, name, email, role, signing_status, send_status, token, auth_required, created_at, updated_at`

// guardDocumentOpen locks the document row and rejects mutation once
// the document has completed. The row lock serializes all recipient
// and field mutations per document.
func guardDocumentOpen(ctx context.Context, q repository.Querier, documentID uuid.UUID) error {
	var status string
	row := q.QueryRowContext(
		ctx,
		"SELECT status FROM documents WHERE id = $1 FOR UPDATE",
		documentID,
	)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("document %s: %w", documentID, ErrNotFound)
		}
		return err
	}
	if status == "COMPLETED" {
		return ErrDocumentClosed
	}
	return nil
}

// Insert writes a recipient row with a fresh token, bypassing the
// document guards. Template instantiation uses it inside its own
// transaction; API-surface creation goes through Create.
func Insert(
	ctx context.Context,
	q repository.Querier,
	documentID uuid.UUID,
	name, email string,
	role Role,
) (*Recipient, error) {
	sqlq := `
		INSERT INTO recipients(id, document_id, name, email, role, token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + returningColumns

	args := []any{uuid.New(), documentID, name, email, role, NewToken()}
	rec, err := repository.QueryOne(ctx, q, sqlq, args, scanRecipient)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

// ForDocument returns a document's recipients in stable insertion order.
func ForDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Recipient, error) {
	sqlq, args := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("DocumentID", &documentID).
		Build()

	return repository.QueryMany(ctx, q, sqlq, args, scanRecipient)
}

// ByID returns one recipient scoped to a document.
func ByID(ctx context.Context, q repository.Querier, documentID, id uuid.UUID) (*Recipient, error) {
	sqlq, args := query.
		NewBuilder(projection).
		WhereEquals("ID", &id).
		WhereEquals("DocumentID", &documentID).
		BuildSingleOrNull()

	rec, err := repository.QueryOne(ctx, q, sqlq, args, scanRecipient)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

// ByToken resolves an access token to its recipient without exposing
// any other recipient's data.
func ByToken(ctx context.Context, q repository.Querier, token string) (*Recipient, error) {
	sqlq, args := query.
		NewBuilder(projection).
		WhereEquals("Token", &token).
		BuildSingleOrNull()

	rec, err := repository.QueryOne(ctx, q, sqlq, args, scanRecipient)
	if err != nil {
		return nil, repository.MapError(err, ErrTokenNotFound, ErrDuplicate)
	}
	return &rec, nil
}

// SetSigningStatus transitions a recipient's signing status.
func SetSigningStatus(ctx context.Context, e repository.Executor, id uuid.UUID, status SigningStatus) error {
	return repository.ExecExpectOne(
		ctx, e,
		"UPDATE recipients SET signing_status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
}

// MarkAllSent flips every recipient of a document to Sent.
func MarkAllSent(ctx context.Context, e repository.Executor, documentID uuid.UUID) error {
	_, err := e.ExecContext(
		ctx,
		"UPDATE recipients SET send_status = $1, updated_at = now() WHERE document_id = $2",
		Sent, documentID,
	)
	return err
}
