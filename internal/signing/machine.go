package signing

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
	"github.com/quill-sign/quill/internal/render"
	"github.com/quill-sign/quill/pkg/repository"
	"github.com/quill-sign/quill/pkg/storage"
)

type machine struct {
	db       *sql.DB
	storage  storage.System
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates the signing state machine implementing the System
// interface.
func New(
	db *sql.DB,
	store storage.System,
	renderer *render.Renderer,
	logger *slog.Logger,
) System {
	return &machine{
		db:       db,
		storage:  store,
		renderer: renderer,
		logger:   logger.With("system", "signing"),
	}
}

func (m *machine) Open(
	ctx context.Context,
	token, password string,
	req auditlog.RequestMetadata,
) (*View, error) {
	view, err := repository.WithTx(ctx, m.db, func(tx *sql.Tx) (View, error) {
		rec, err := recipients.ByToken(ctx, tx, token)
		if err != nil {
			return View{}, err
		}

		doc, err := documents.ByID(ctx, tx, rec.DocumentID)
		if err != nil {
			return View{}, err
		}

		meta, err := documents.MetaFor(ctx, tx, doc.ID)
		if err != nil {
			return View{}, err
		}
		if err := checkPassword(meta, password); err != nil {
			return View{}, err
		}

		owned, err := fields.ForRecipient(ctx, tx, doc.ID, rec.ID)
		if err != nil {
			return View{}, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID:  doc.ID,
			Type:        auditlog.EventDocumentOpened,
			RecipientID: &rec.ID,
			ActorName:   rec.Name,
			ActorEmail:  rec.Email,
			Payload: auditlog.RecipientPayload{
				RecipientID:    rec.ID,
				RecipientEmail: rec.Email,
				RecipientRole:  string(rec.Role),
			},
			Request: req,
		})
		if err != nil {
			return View{}, err
		}

		return View{
			Document: ViewDocument{
				ID:          doc.ID,
				Title:       doc.Title,
				Status:      doc.Status,
				PageCount:   doc.PageCount,
				Subject:     meta.Subject,
				Message:     meta.Message,
				RedirectURL: meta.RedirectURL,
			},
			Recipient: *rec,
			Fields:    owned,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("document opened", "document", view.Document.ID, "recipient", view.Recipient.ID)
	return &view, nil
}

func (m *machine) SignField(
	ctx context.Context,
	token string,
	fieldID uuid.UUID,
	cmd fields.SignCommand,
	req auditlog.RequestMetadata,
) (*fields.Field, error) {
	f, err := repository.WithTx(ctx, m.db, func(tx *sql.Tx) (*fields.Field, error) {
		rec, err := recipients.ByToken(ctx, tx, token)
		if err != nil {
			return nil, err
		}

		doc, err := documents.LockByID(ctx, tx, rec.DocumentID)
		if err != nil {
			return nil, err
		}

		f, err := fields.ByID(ctx, tx, doc.ID, fieldID)
		if err != nil {
			return nil, err
		}

		if err := CanSignField(doc.Status, *rec, *f); err != nil {
			return nil, err
		}

		text, err := m.resolveValue(ctx, tx, doc, *f, *rec, cmd)
		if err != nil {
			return nil, err
		}

		if err := fields.SetValue(ctx, tx, f.ID, text); err != nil {
			return nil, err
		}

		if f.Type.SignatureFamily() {
			image, typed := signaturePayload(cmd)
			if _, err := fields.InsertSignature(ctx, tx, f.ID, rec.ID, image, typed); err != nil {
				return nil, err
			}
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID:  doc.ID,
			Type:        auditlog.EventFieldInserted,
			RecipientID: &rec.ID,
			FieldID:     &f.ID,
			ActorName:   rec.Name,
			ActorEmail:  rec.Email,
			Payload: auditlog.FieldPayload{
				FieldID:        f.ID,
				FieldType:      string(f.Type),
				RecipientID:    rec.ID,
				RecipientEmail: rec.Email,
				Value:          text,
			},
			Request: req,
		})
		if err != nil {
			return nil, err
		}

		return fields.ByID(ctx, tx, doc.ID, f.ID)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("field signed", "field", f.ID, "document", f.DocumentID, "type", f.Type)
	return f, nil
}

func (m *machine) UnsignField(
	ctx context.Context,
	token string,
	fieldID uuid.UUID,
	req auditlog.RequestMetadata,
) (*fields.Field, error) {
	f, err := repository.WithTx(ctx, m.db, func(tx *sql.Tx) (*fields.Field, error) {
		rec, err := recipients.ByToken(ctx, tx, token)
		if err != nil {
			return nil, err
		}

		doc, err := documents.LockByID(ctx, tx, rec.DocumentID)
		if err != nil {
			return nil, err
		}

		f, err := fields.ByID(ctx, tx, doc.ID, fieldID)
		if err != nil {
			return nil, err
		}

		if err := CanUnsignField(doc.Status, *rec, *f); err != nil {
			return nil, err
		}

		if err := fields.ClearValue(ctx, tx, f.ID); err != nil {
			return nil, err
		}
		if err := fields.DeleteSignatureForField(ctx, tx, f.ID); err != nil {
			return nil, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID:  doc.ID,
			Type:        auditlog.EventFieldUninserted,
			RecipientID: &rec.ID,
			FieldID:     &f.ID,
			ActorName:   rec.Name,
			ActorEmail:  rec.Email,
			Payload: auditlog.FieldPayload{
				FieldID:        f.ID,
				FieldType:      string(f.Type),
				RecipientID:    rec.ID,
				RecipientEmail: rec.Email,
			},
			Request: req,
		})
		if err != nil {
			return nil, err
		}

		return fields.ByID(ctx, tx, doc.ID, f.ID)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("field unsigned", "field", f.ID, "document", f.DocumentID)
	return f, nil
}

func (m *machine) CompleteRecipient(
	ctx context.Context,
	token string,
	req auditlog.RequestMetadata,
) (*recipients.Recipient, error) {
	rec, err := repository.WithTx(ctx, m.db, func(tx *sql.Tx) (*recipients.Recipient, error) {
		rec, err := recipients.ByToken(ctx, tx, token)
		if err != nil {
			return nil, err
		}

		doc, err := documents.LockByID(ctx, tx, rec.DocumentID)
		if err != nil {
			return nil, err
		}

		owned, err := fields.ForRecipient(ctx, tx, doc.ID, rec.ID)
		if err != nil {
			return nil, err
		}

		if err := CanCompleteRecipient(doc.Status, *rec, owned); err != nil {
			return nil, err
		}

		if err := recipients.SetSigningStatus(ctx, tx, rec.ID, recipients.Signed); err != nil {
			return nil, err
		}

		_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
			DocumentID:  doc.ID,
			Type:        auditlog.EventDocumentRecipientCompleted,
			RecipientID: &rec.ID,
			ActorName:   rec.Name,
			ActorEmail:  rec.Email,
			Payload: auditlog.RecipientPayload{
				RecipientID:    rec.ID,
				RecipientEmail: rec.Email,
				RecipientRole:  string(rec.Role),
				Action:         rec.Role.CompletionAction(),
			},
			Request: req,
		})
		if err != nil {
			return nil, err
		}

		// The last completing recipient triggers document completion
		// inside the same transaction, still holding the row lock.
		all, err := recipients.ForDocument(ctx, tx, doc.ID)
		if err != nil {
			return nil, err
		}
		if AllCompleted(all) {
			actor := auditlog.Actor{Name: rec.Name, Email: rec.Email}
			if err := m.complete(ctx, tx, doc, all, actor, req); err != nil {
				return nil, err
			}
		}

		return recipients.ByID(ctx, tx, doc.ID, rec.ID)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("recipient completed", "recipient", rec.ID, "document", rec.DocumentID, "role", rec.Role)
	return rec, nil
}

func (m *machine) SendDocument(
	ctx context.Context,
	documentID uuid.UUID,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*documents.Document, error) {
	doc, err := repository.WithTx(ctx, m.db, func(tx *sql.Tx) (*documents.Document, error) {
		doc, err := documents.LockByID(ctx, tx, documentID)
		if err != nil {
			return nil, err
		}

		recs, err := recipients.ForDocument(ctx, tx, documentID)
		if err != nil {
			return nil, err
		}

		if err := CanSend(doc.Status, len(recs)); err != nil {
			return nil, err
		}

		if err := documents.SetStatus(ctx, tx, documentID, documents.Pending); err != nil {
			return nil, err
		}
		if err := recipients.MarkAllSent(ctx, tx, documentID); err != nil {
			return nil, err
		}

		// One DOCUMENT_SENT entry per recipient so the certificate can
		// read each recipient's sent timestamp directly.
		for _, rec := range recs {
			_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
				DocumentID:  documentID,
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
				return nil, err
			}
		}

		return documents.ByID(ctx, tx, documentID)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("document sent", "document", doc.ID)
	return doc, nil
}

func (m *machine) CompleteDocument(
	ctx context.Context,
	documentID uuid.UUID,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) (*documents.Document, error) {
	doc, err := repository.WithTx(ctx, m.db, func(tx *sql.Tx) (*documents.Document, error) {
		doc, err := documents.LockByID(ctx, tx, documentID)
		if err != nil {
			return nil, err
		}

		recs, err := recipients.ForDocument(ctx, tx, documentID)
		if err != nil {
			return nil, err
		}

		if err := CanComplete(doc.Status, recs); err != nil {
			return nil, err
		}

		if err := m.complete(ctx, tx, doc, recs, actor, req); err != nil {
			return nil, err
		}

		return documents.ByID(ctx, tx, documentID)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("document completed", "document", doc.ID)
	return doc, nil
}

// resolveValue turns a sign command into the text persisted as the
// field's customText, applying per-type semantics and meta constraints.
func (m *machine) resolveValue(
	ctx context.Context,
	tx *sql.Tx,
	doc *documents.Document,
	f fields.Field,
	rec recipients.Recipient,
	cmd fields.SignCommand,
) (string, error) {
	switch f.Type {
	case fields.TypeDate:
		meta, err := documents.MetaFor(ctx, tx, doc.ID)
		if err != nil {
			return "", err
		}
		loc, err := time.LoadLocation(meta.Timezone)
		if err != nil {
			return "", fmt.Errorf("%w: %s", documents.ErrInvalidTimezone, meta.Timezone)
		}
		return time.Now().In(loc).Format(meta.DateFormat), nil

	case fields.TypeName:
		if cmd.Text != "" {
			return cmd.Text, nil
		}
		return rec.Name, nil

	case fields.TypeEmail:
		if cmd.Text != "" {
			return cmd.Text, nil
		}
		return rec.Email, nil

	case fields.TypeSignature, fields.TypeFreeSignature, fields.TypeInitials:
		if cmd.Image == "" && strings.TrimSpace(cmd.Text) == "" {
			return "", fields.ErrSelectionRequired
		}
		if cmd.Image != "" {
			if _, err := decodeSignatureImage(cmd.Image); err != nil {
				return "", err
			}
		}
		return cmd.Text, nil

	default:
		text := cmd.Text
		if text == "" && f.Meta != nil {
			text = f.Meta.DefaultValue
		}
		if err := f.Meta.ValidateInput(text); err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return render.EmptyValueSentinel + strings.ToLower(string(f.Type)), nil
		}
		return text, nil
	}
}

func signaturePayload(cmd fields.SignCommand) (image, typed *string) {
	if cmd.Image != "" {
		v := cmd.Image
		image = &v
	}
	if cmd.Text != "" {
		v := cmd.Text
		typed = &v
	}
	return image, typed
}

// decodeSignatureImage decodes a base64 PNG payload, tolerating a data
// URL prefix.
func decodeSignatureImage(payload string) ([]byte, error) {
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", render.ErrCorruptImage, err)
	}
	return data, nil
}

func checkPassword(meta *documents.Meta, password string) error {
	if meta.Password == nil {
		return nil
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if bcrypt.CompareHashAndPassword([]byte(*meta.Password), []byte(password)) != nil {
		return ErrPasswordInvalid
	}
	return nil
}
