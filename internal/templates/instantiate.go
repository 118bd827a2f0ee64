package templates

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
	"github.com/quill-sign/quill/pkg/repository"
)

// DirectInstance is the result of visiting a direct link: the
// instantiated document, already sent, and the visitor's recipient
// with their freshly minted access token.
type DirectInstance struct {
	Document  documents.Document   `json:"document"`
	Recipient recipients.Recipient `json:"recipient"`
}

// Generate instantiates a draft document from a template: the blob is
// copied, placeholders become concrete recipients with fresh tokens,
// and fields are remapped onto the clones.
func (r *repo) Generate(
	ctx context.Context,
	id uuid.UUID,
	cmd GenerateCommand,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*documents.Document, error) {
	detail, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	overrides := make(map[uuid.UUID]RecipientOverride, len(cmd.Recipients))
	for i, p := range detail.Placeholders {
		if i < len(cmd.Recipients) {
			overrides[p.ID] = cmd.Recipients[i]
		}
	}

	doc, _, err := r.instantiate(ctx, detail, overrides, cmd.Title, uuid.Nil, false, actor, req)
	if err != nil {
		return nil, err
	}

	r.logger.Info("document generated", "template", id, "document", doc.ID)
	return doc, nil
}

// CreateDirectLink mints the template's public token, bound to one
// placeholder slot. A template carries at most one direct link.
func (r *repo) CreateDirectLink(ctx context.Context, templateID uuid.UUID, cmd DirectLinkCommand) (*DirectLink, error) {
	link, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*DirectLink, error) {
		if err := placeholderExists(ctx, tx, templateID, cmd.PlaceholderID); err != nil {
			return nil, err
		}

		existing, err := directLinkFor(ctx, tx, templateID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDirectLinkExists
		}

		l, err := repository.QueryOne(
			ctx, tx,
			`INSERT INTO template_direct_links(id, template_id, placeholder_id, token, enabled)
			 VALUES ($1, $2, $3, $4, true)
			 RETURNING id, template_id, placeholder_id, token, enabled, created_at`,
			[]any{uuid.New(), templateID, cmd.PlaceholderID, recipients.NewToken()},
			scanDirectLink,
		)
		if err != nil {
			return nil, err
		}
		return &l, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDirectLinkExists)
	}

	r.logger.Info("direct link created", "template", templateID, "id", link.ID)
	return link, nil
}

// SetDirectLinkEnabled toggles the direct link without rotating its
// token.
func (r *repo) SetDirectLinkEnabled(ctx context.Context, templateID uuid.UUID, enabled bool) (*DirectLink, error) {
	l, err := repository.QueryOne(
		ctx, r.db,
		`UPDATE template_direct_links SET enabled = $1 WHERE template_id = $2
		 RETURNING id, template_id, placeholder_id, token, enabled, created_at`,
		[]any{enabled, templateID},
		scanDirectLink,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDirectLinkNotFound
		}
		return nil, err
	}

	r.logger.Info("direct link toggled", "template", templateID, "enabled", enabled)
	return &l, nil
}

func (r *repo) DeleteDirectLink(ctx context.Context, templateID uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM template_direct_links WHERE template_id = $1",
		templateID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDirectLinkNotFound
		}
		return err
	}

	r.logger.Info("direct link deleted", "template", templateID)
	return nil
}

// InstantiateDirect serves a direct link visit: the template becomes a
// pending document with the visitor in the linked slot, and the
// visitor's token comes back so they can sign immediately.
func (r *repo) InstantiateDirect(
	ctx context.Context,
	token string,
	visitor RecipientOverride,
	req auditlog.RequestMetadata,
) (*DirectInstance, error) {
	link, err := directLinkByToken(ctx, r.db, token)
	if err != nil {
		return nil, err
	}
	if !link.Enabled {
		return nil, ErrDirectLinkDisabled
	}

	detail, err := r.Find(ctx, link.TemplateID)
	if err != nil {
		return nil, err
	}

	actor := auditlog.Actor{Name: visitor.Name, Email: visitor.Email}
	overrides := map[uuid.UUID]RecipientOverride{link.PlaceholderID: visitor}

	doc, rec, err := r.instantiate(ctx, detail, overrides, "", link.PlaceholderID, true, actor, req)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrPlaceholderNotFound
	}

	r.logger.Info("direct link visited", "template", link.TemplateID, "document", doc.ID)
	return &DirectInstance{Document: *doc, Recipient: *rec}, nil
}

// instantiate copies the template blob and clones the placeholder
// graph into a new document. When send is true the document leaves as
// PENDING with every recipient marked sent. focusSlot, when set, names
// the placeholder whose cloned recipient is returned.
func (r *repo) instantiate(
	ctx context.Context,
	detail *Detail,
	overrides map[uuid.UUID]RecipientOverride,
	title string,
	focusSlot uuid.UUID,
	send bool,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*documents.Document, *recipients.Recipient, error) {
	data, err := r.download(ctx, detail.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	if title == "" {
		title = detail.Title
	}

	docID := uuid.New()
	key := documents.StorageKeyFor(docID, detail.Filename)
	if err := r.storage.Upload(ctx, key, bytes.NewReader(data), "application/pdf"); err != nil {
		return nil, nil, fmt.Errorf("upload document blob: %w", err)
	}

	type instance struct {
		doc   *documents.Document
		focus *recipients.Recipient
	}

	inst, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (instance, error) {
		doc, err := documents.Insert(ctx, tx, docID, documents.CreateCommand{
			Data:      data,
			Title:     title,
			Filename:  detail.Filename,
			OwnerID:   detail.OwnerID,
			TeamID:    detail.TeamID,
			PageCount: detail.PageCount,
		}, key)
		if err != nil {
			return instance{}, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID: doc.ID,
			Type:       auditlog.EventDocumentCreated,
			ActorName:  actor.Name,
			ActorEmail: actor.Email,
			Payload:    auditlog.DocumentPayload{Title: doc.Title, Status: string(doc.Status)},
			Request:    req,
		})
		if err != nil {
			return instance{}, err
		}

		var focus *recipients.Recipient
		slots := make(map[uuid.UUID]uuid.UUID, len(detail.Placeholders))
		recs := make([]recipients.Recipient, 0, len(detail.Placeholders))

		for _, p := range detail.Placeholders {
			name, email := p.Name, p.Email
			if ov, ok := overrides[p.ID]; ok {
				if ov.Name != "" {
					name = ov.Name
				}
				if ov.Email != "" {
					email = ov.Email
				}
			}

			rec, err := recipients.Insert(ctx, tx, doc.ID, name, email, p.Role)
			if err != nil {
				return instance{}, err
			}
			slots[p.ID] = rec.ID
			recs = append(recs, *rec)
			if p.ID == focusSlot {
				focus = rec
			}
		}

		for _, f := range detail.Fields {
			recID, ok := slots[f.PlaceholderID]
			if !ok {
				return instance{}, ErrPlaceholderNotFound
			}
			if _, err := fields.Insert(ctx, tx, doc.ID, recID, f.Type, f.Page, f.Rect, f.Meta); err != nil {
				return instance{}, err
			}
		}

		if send {
			if err := documents.SetStatus(ctx, tx, doc.ID, documents.Pending); err != nil {
				return instance{}, err
			}
			if err := recipients.MarkAllSent(ctx, tx, doc.ID); err != nil {
				return instance{}, err
			}
			for _, rec := range recs {
				_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
					DocumentID:  doc.ID,
					Type:        auditlog.EventDocumentSent,
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
				if err != nil {
					return instance{}, err
				}
			}
			doc, err = documents.ByID(ctx, tx, doc.ID)
			if err != nil {
				return instance{}, err
			}
		}

		return instance{doc: doc, focus: focus}, nil
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, nil, err
	}

	return inst.doc, inst.focus, nil
}

func directLinkFor(ctx context.Context, q repository.Querier, templateID uuid.UUID) (*DirectLink, error) {
	row := q.QueryRowContext(
		ctx,
		`SELECT id, template_id, placeholder_id, token, enabled, created_at
		 FROM template_direct_links WHERE template_id = $1`,
		templateID,
	)
	l, err := scanDirectLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func directLinkByToken(ctx context.Context, q repository.Querier, token string) (*DirectLink, error) {
	row := q.QueryRowContext(
		ctx,
		`SELECT id, template_id, placeholder_id, token, enabled, created_at
		 FROM template_direct_links WHERE token = $1`,
		token,
	)
	l, err := scanDirectLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDirectLinkNotFound
		}
		return nil, err
	}
	return &l, nil
}
