package templates

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

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
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

// New creates a template repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "templates"),
		pagination: pagination,
	}
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Template], error) {
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
		return nil, fmt.Errorf("count templates: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	tpls, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}

	result := pagination.NewPageResult(tpls, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Detail, error) {
	tpl, err := templateByID(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	placeholders, err := placeholdersFor(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	flds, err := placeholderFieldsFor(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	link, err := directLinkFor(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Template:     *tpl,
		Placeholders: placeholders,
		Fields:       flds,
		DirectLink:   link,
	}, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Template, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrInvalidFile
	}
	if cmd.PageCount < 1 {
		return nil, ErrNotPDF
	}

	id := uuid.New()
	key := templateStorageKey(id, cmd.Filename)
	title := cmd.Title
	if title == "" {
		title = cmd.Filename
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload template blob: %w", err)
	}

	q := `
		INSERT INTO templates(id, title, owner_id, team_id, filename, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + templateColumns

	args := []any{
		id, title, cmd.OwnerID, cmd.TeamID,
		cmd.Filename, int64(len(cmd.Data)), cmd.PageCount, key,
	}

	tpl, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Template, error) {
		return repository.QueryOne(ctx, tx, q, args, scanTemplate)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("template created", "id", tpl.ID, "title", tpl.Title)
	return &tpl, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	tpl, err := templateByID(ctx, r.db, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM templates WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, tpl.StorageKey); delErr != nil {
		r.logger.Warn("blob delete failed after DB delete", "key", tpl.StorageKey, "error", delErr)
	}

	r.logger.Info("template deleted", "id", id)
	return nil
}

// Duplicate deep copies a template: blob, placeholders, and fields.
// The direct link is deliberately not copied; a public token stays
// bound to exactly one template.
func (r *repo) Duplicate(ctx context.Context, id uuid.UUID) (*Template, error) {
	detail, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := r.download(ctx, detail.StorageKey)
	if err != nil {
		return nil, err
	}

	dup, err := r.Create(ctx, CreateCommand{
		Data:      data,
		Title:     detail.Title + " (copy)",
		Filename:  detail.Filename,
		OwnerID:   detail.OwnerID,
		TeamID:    detail.TeamID,
		PageCount: detail.PageCount,
	})
	if err != nil {
		return nil, err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		slots := make(map[uuid.UUID]uuid.UUID, len(detail.Placeholders))
		for _, p := range detail.Placeholders {
			clone, err := insertPlaceholder(ctx, tx, dup.ID, PlaceholderCommand{
				Name:  p.Name,
				Email: p.Email,
				Role:  p.Role,
			})
			if err != nil {
				return struct{}{}, err
			}
			slots[p.ID] = clone.ID
		}

		for _, f := range detail.Fields {
			slot, ok := slots[f.PlaceholderID]
			if !ok {
				return struct{}{}, ErrPlaceholderNotFound
			}
			if _, err := insertPlaceholderField(ctx, tx, dup.ID, PlaceholderFieldCommand{
				PlaceholderID: slot,
				Type:          f.Type,
				Page:          f.Page,
				Rect:          f.Rect,
				Meta:          f.Meta,
			}); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("template duplicated", "source", id, "id", dup.ID)
	return dup, nil
}

func (r *repo) AddPlaceholder(ctx context.Context, templateID uuid.UUID, cmd PlaceholderCommand) (*Placeholder, error) {
	if _, err := recipients.ParseRole(string(cmd.Role)); err != nil {
		return nil, err
	}
	if _, err := templateByID(ctx, r.db, templateID); err != nil {
		return nil, err
	}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Placeholder, error) {
		return insertPlaceholder(ctx, tx, templateID, cmd)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("placeholder added", "template", templateID, "id", p.ID, "role", p.Role)
	return p, nil
}

func (r *repo) RemovePlaceholder(ctx context.Context, templateID, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM template_recipients WHERE id = $1 AND template_id = $2",
		id, templateID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlaceholderNotFound
		}
		return err
	}

	r.logger.Info("placeholder removed", "template", templateID, "id", id)
	return nil
}

func (r *repo) AddField(ctx context.Context, templateID uuid.UUID, cmd PlaceholderFieldCommand) (*PlaceholderField, error) {
	if err := validateFieldCommand(cmd); err != nil {
		return nil, err
	}
	if _, err := templateByID(ctx, r.db, templateID); err != nil {
		return nil, err
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*PlaceholderField, error) {
		if err := placeholderExists(ctx, tx, templateID, cmd.PlaceholderID); err != nil {
			return nil, err
		}
		return insertPlaceholderField(ctx, tx, templateID, cmd)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("template field added", "template", templateID, "id", f.ID, "type", f.Type)
	return f, nil
}

func (r *repo) RemoveField(ctx context.Context, templateID, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM template_fields WHERE id = $1 AND template_id = $2",
		id, templateID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFieldNotFound
		}
		return err
	}

	r.logger.Info("template field removed", "template", templateID, "id", id)
	return nil
}

func (r *repo) download(ctx context.Context, key string) ([]byte, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

const templateColumns = `id, title, owner_id, team_id, filename, size_bytes, page_count, storage_key, created_at, updated_at`

// validateFieldCommand applies the same creation rules as the field
// domain: known creatable type, positive page, percentage rect, and
// type-matched meta.
func validateFieldCommand(cmd PlaceholderFieldCommand) error {
	t, err := fields.ParseType(string(cmd.Type))
	if err != nil {
		return err
	}
	if !t.Creatable() {
		return fmt.Errorf("%w: %s", fields.ErrNotCreatable, t)
	}
	if cmd.Page < 1 {
		return fields.ErrPageInvalid
	}
	if !cmd.Rect.Valid() {
		return fields.ErrRectInvalid
	}
	return cmd.Meta.Validate(t)
}

func templateStorageKey(id uuid.UUID, filename string) string {
	name := filepath.Base(filename)
	if name == "." || name == "" {
		name = "template"
	}
	return fmt.Sprintf("templates/%s/%s", id, url.PathEscape(name))
}

func templateByID(ctx context.Context, q repository.Querier, id uuid.UUID) (*Template, error) {
	sqlq, args := query.NewBuilder(projection).BuildSingle("ID", id)

	t, err := repository.QueryOne(ctx, q, sqlq, args, scanTemplate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func placeholdersFor(ctx context.Context, q repository.Querier, templateID uuid.UUID) ([]Placeholder, error) {
	return repository.QueryMany(
		ctx, q,
		`SELECT id, template_id, name, email, role, created_at
		 FROM template_recipients
		 WHERE template_id = $1
		 ORDER BY created_at, id`,
		[]any{templateID},
		scanPlaceholder,
	)
}

func placeholderFieldsFor(ctx context.Context, q repository.Querier, templateID uuid.UUID) ([]PlaceholderField, error) {
	return repository.QueryMany(
		ctx, q,
		`SELECT id, template_id, placeholder_id, type, page, position_x, position_y, width, height, field_meta, created_at
		 FROM template_fields
		 WHERE template_id = $1
		 ORDER BY page, created_at, id`,
		[]any{templateID},
		scanPlaceholderField,
	)
}

func placeholderExists(ctx context.Context, q repository.Querier, templateID, id uuid.UUID) error {
	var one int
	row := q.QueryRowContext(
		ctx,
		"SELECT 1 FROM template_recipients WHERE id = $1 AND template_id = $2",
		id, templateID,
	)
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlaceholderNotFound
		}
		return err
	}
	return nil
}

func insertPlaceholder(ctx context.Context, q repository.Querier, templateID uuid.UUID, cmd PlaceholderCommand) (*Placeholder, error) {
	p, err := repository.QueryOne(
		ctx, q,
		`INSERT INTO template_recipients(id, template_id, name, email, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, template_id, name, email, role, created_at`,
		[]any{uuid.New(), templateID, cmd.Name, cmd.Email, cmd.Role},
		scanPlaceholder,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func insertPlaceholderField(ctx context.Context, q repository.Querier, templateID uuid.UUID, cmd PlaceholderFieldCommand) (*PlaceholderField, error) {
	meta, err := encodeMeta(cmd.Meta)
	if err != nil {
		return nil, err
	}

	f, err := repository.QueryOne(
		ctx, q,
		`INSERT INTO template_fields(id, template_id, placeholder_id, type, page, position_x, position_y, width, height, field_meta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, template_id, placeholder_id, type, page, position_x, position_y, width, height, field_meta, created_at`,
		[]any{
			uuid.New(), templateID, cmd.PlaceholderID, cmd.Type,
			cmd.Page, cmd.Rect.X, cmd.Rect.Y, cmd.Rect.Width, cmd.Rect.Height, meta,
		},
		scanPlaceholderField,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
