package documents

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/pkg/pagination"
	"github.com/quill-sign/quill/pkg/query"
	"github.com/quill-sign/quill/pkg/repository"
	"github.com/quill-sign/quill/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	return ByID(ctx, r.db, id)
}

func (r *repo) FindMeta(ctx context.Context, id uuid.UUID) (*Meta, error) {
	if _, err := ByID(ctx, r.db, id); err != nil {
		return nil, err
	}
	return MetaFor(ctx, r.db, id)
}

func (r *repo) Create(
	ctx context.Context,
	cmd CreateCommand,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*Document, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrInvalidFile
	}
	if cmd.PageCount < 1 {
		return nil, ErrNotPDF
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))
	title := cmd.Title
	if title == "" {
		title = cmd.Filename
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	q := `
		INSERT INTO documents(id, title, owner_id, team_id, filename, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + returningColumns

	insertArgs := []any{
		id,
		title,
		cmd.OwnerID,
		cmd.TeamID,
		cmd.Filename,
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		d, err := repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
		if err != nil {
			return Document{}, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID: d.ID,
			Type:       auditlog.EventDocumentCreated,
			ActorName:  actor.Name,
			ActorEmail: actor.Email,
			Payload:    auditlog.DocumentPayload{Title: d.Title, Status: string(d.Status)},
			Request:    req,
		})
		return d, err
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "title", d.Title, "pages", d.PageCount)
	return &d, nil
}

func (r *repo) UpsertMeta(
	ctx context.Context,
	id uuid.UUID,
	cmd MetaCommand,
) (*Meta, error) {
	m := Defaults(id)
	if cmd.Timezone != "" {
		if _, err := time.LoadLocation(cmd.Timezone); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, cmd.Timezone)
		}
		m.Timezone = cmd.Timezone
	}
	if cmd.DateFormat != "" {
		m.DateFormat = cmd.DateFormat
	}
	m.Subject = cmd.Subject
	m.Message = cmd.Message
	m.RedirectURL = cmd.RedirectURL

	if cmd.Password != nil && *cmd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*cmd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash document password: %w", err)
		}
		h := string(hash)
		m.Password = &h
	}

	meta, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Meta, error) {
		doc, err := LockByID(ctx, tx, id)
		if err != nil {
			return Meta{}, err
		}
		if doc.Status.Terminal() {
			return Meta{}, ErrCompleted
		}

		q := `
			INSERT INTO document_meta(document_id, subject, message, timezone, date_format, redirect_url, password)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (document_id) DO UPDATE
			SET subject = $2, message = $3, timezone = $4, date_format = $5, redirect_url = $6,
			    password = COALESCE($7, document_meta.password)
			RETURNING document_id, subject, message, timezone, date_format, redirect_url, password`

		args := []any{id, m.Subject, m.Message, m.Timezone, m.DateFormat, m.RedirectURL, m.Password}
		return repository.QueryOne(ctx, tx, q, args, scanMeta)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document meta updated", "id", id)
	return &meta, nil
}

func (r *repo) Delete(
	ctx context.Context,
	id uuid.UUID,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) error {
	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Document, error) {
		doc, err := LockByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if doc.Status.Terminal() {
			return nil, ErrCompleted
		}

		// The ledger carries no foreign key to documents, so the
		// deletion entry outlives the row it describes.
		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID: id,
			Type:       auditlog.EventDocumentDeleted,
			ActorName:  actor.Name,
			ActorEmail: actor.Email,
			Payload:    auditlog.DocumentPayload{Title: doc.Title, Status: string(doc.Status)},
			Request:    req,
		})
		if err != nil {
			return nil, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		); err != nil {
			return nil, err
		}
		return doc, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	for _, key := range blobKeys(doc) {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("blob delete failed after DB delete", "key", key, "error", delErr)
		}
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) Duplicate(
	ctx context.Context,
	id uuid.UUID,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*Document, error) {
	src, err := ByID(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	data, err := r.download(ctx, src.StorageKey)
	if err != nil {
		return nil, err
	}

	dup, err := r.Create(ctx, CreateCommand{
		Data:      data,
		Title:     src.Title + " (copy)",
		Filename:  src.Filename,
		OwnerID:   src.OwnerID,
		TeamID:    src.TeamID,
		PageCount: src.PageCount,
	}, actor, req)
	if err != nil {
		return nil, err
	}

	meta, err := MetaFor(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		_, err = r.db.ExecContext(
			ctx,
			`INSERT INTO document_meta(document_id, subject, message, timezone, date_format, redirect_url, password)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			dup.ID, meta.Subject, meta.Message, meta.Timezone, meta.DateFormat, meta.RedirectURL, meta.Password,
		)
		if err != nil {
			return nil, fmt.Errorf("copy document meta: %w", err)
		}
	}

	r.logger.Info("document duplicated", "source", id, "id", dup.ID)
	return dup, nil
}

// Download returns the stored PDF bytes. When completed is true the
// final rendered blob is served; a document that has not completed has
// no such blob.
func (r *repo) Download(ctx context.Context, id uuid.UUID, completed bool) ([]byte, *Document, error) {
	doc, err := ByID(ctx, r.db, id)
	if err != nil {
		return nil, nil, err
	}

	key := doc.StorageKey
	if completed {
		if doc.CompletedStorageKey == nil {
			return nil, nil, ErrNotCompleted
		}
		key = *doc.CompletedStorageKey
	}

	data, err := r.download(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return data, doc, nil
}

func (r *repo) download(ctx context.Context, key string) ([]byte, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

const returningColumns = `id, title, status, owner_id, team_id, filename, size_bytes, page_count, storage_key, completed_storage_key, completed_at, created_at, updated_at`

func blobKeys(d *Document) []string {
	keys := []string{d.StorageKey}
	if d.CompletedStorageKey != nil {
		keys = append(keys, *d.CompletedStorageKey)
	}
	return keys
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id, filename)
}

// CompletedStorageKey derives the blob key of the final rendered PDF.
func CompletedStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/completed-%s", id, sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}

// Insert writes a document row under a caller-chosen id and storage
// key. Template instantiation uses it inside its own transaction after
// uploading the blob; API-surface creation goes through Create.
func Insert(
	ctx context.Context,
	q repository.Querier,
	id uuid.UUID,
	cmd CreateCommand,
	key string,
) (*Document, error) {
	sqlq := `
		INSERT INTO documents(id, title, owner_id, team_id, filename, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + returningColumns

	args := []any{
		id, cmd.Title, cmd.OwnerID, cmd.TeamID,
		cmd.Filename, int64(len(cmd.Data)), cmd.PageCount, key,
	}
	d, err := repository.QueryOne(ctx, q, sqlq, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

// StorageKeyFor derives the blob key used for a document's original
// PDF.
func StorageKeyFor(id uuid.UUID, filename string) string {
	return buildStorageKey(id, sanitizeFilename(filename))
}

// ByID returns one document by id.
func ByID(ctx context.Context, q repository.Querier, id uuid.UUID) (*Document, error) {
	sqlq, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, q, sqlq, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

// LockByID loads a document under SELECT ... FOR UPDATE, serializing
// every mutation of the same document behind the row lock.
func LockByID(ctx context.Context, q repository.Querier, id uuid.UUID) (*Document, error) {
	row := q.QueryRowContext(
		ctx,
		"SELECT "+returningColumns+" FROM documents WHERE id = $1 FOR UPDATE",
		id,
	)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// MetaFor returns a document's signing metadata, falling back to the
// defaults when no meta record exists.
func MetaFor(ctx context.Context, q repository.Querier, id uuid.UUID) (*Meta, error) {
	row := q.QueryRowContext(
		ctx,
		"SELECT document_id, subject, message, timezone, date_format, redirect_url, password FROM document_meta WHERE document_id = $1",
		id,
	)
	m, err := scanMeta(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			d := Defaults(id)
			return &d, nil
		}
		return nil, err
	}
	return &m, nil
}

// SetStatus transitions a document's lifecycle status.
func SetStatus(ctx context.Context, e repository.Executor, id uuid.UUID, status Status) error {
	return repository.ExecExpectOne(
		ctx, e,
		"UPDATE documents SET status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
}

// MarkCompleted records the final blob key and completion time and
// moves the document to its terminal status.
func MarkCompleted(ctx context.Context, e repository.Executor, id uuid.UUID, completedKey string) error {
	return repository.ExecExpectOne(
		ctx, e,
		`UPDATE documents
		 SET status = $1, completed_storage_key = $2, completed_at = now(), updated_at = now()
		 WHERE id = $3`,
		Completed, completedKey, id,
	)
}
