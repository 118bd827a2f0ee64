package signing

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
	"github.com/quill-sign/quill/internal/render"
)

// complete renders every inserted field into the stored PDF, appends
// the certificate pages, uploads the final blob, and moves the document
// to its terminal status. It runs inside the caller's transaction,
// still holding the document row lock.
func (m *machine) complete(
	ctx context.Context,
	tx *sql.Tx,
	doc *documents.Document,
	recs []recipients.Recipient,
	actor auditlog.Actor,
	req auditlog.RequestMetadata,
) error {
	// The blob download goes out to storage while the ledger and field
	// queries run on the transaction; the transaction is not safe for
	// concurrent use, so only the download leaves this goroutine.
	var pdf []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rc, err := m.storage.Download(gctx, doc.StorageKey)
		if err != nil {
			return fmt.Errorf("download document blob: %w", err)
		}
		defer rc.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}
		pdf = buf.Bytes()
		return nil
	})

	flds, err := fields.ForDocument(ctx, tx, doc.ID)
	if err != nil {
		return err
	}
	sigs, err := fields.SignaturesForDocument(ctx, tx, doc.ID)
	if err != nil {
		return err
	}
	cert, err := m.certificate(ctx, tx, doc.ID, recs, flds, sigs)
	if err != nil {
		return err
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range flds {
		if !f.Inserted {
			continue
		}
		pdf, err = m.renderer.RenderField(pdf, placement(f), value(f, sigs))
		if err != nil {
			return fmt.Errorf("render field %s: %w", f.ID, err)
		}
	}

	pdf, err = m.renderer.AppendCertificate(pdf, cert)
	if err != nil {
		return fmt.Errorf("append certificate: %w", err)
	}

	key := documents.CompletedStorageKey(doc.ID, doc.Filename)
	if err := m.storage.Upload(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return fmt.Errorf("upload completed blob: %w", err)
	}

	if err := documents.MarkCompleted(ctx, tx, doc.ID, key); err != nil {
		return err
	}

	_, err = auditlog.Append(ctx, tx, auditlog.AppendCommand{
		DocumentID: doc.ID,
		Type:       auditlog.EventDocumentCompleted,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		Payload:    auditlog.DocumentPayload{Title: doc.Title, Status: string(documents.Completed)},
		Request:    req,
	})
	return err
}

// certificate assembles one row per recipient from the ledger, in the
// recipients' stable query order.
func (m *machine) certificate(
	ctx context.Context,
	tx *sql.Tx,
	documentID uuid.UUID,
	recs []recipients.Recipient,
	flds []fields.Field,
	sigs map[uuid.UUID]fields.Signature,
) (render.Certificate, error) {
	sent, err := auditlog.OfType(ctx, tx, documentID, auditlog.EventDocumentSent)
	if err != nil {
		return render.Certificate{}, err
	}
	opened, err := auditlog.OfType(ctx, tx, documentID, auditlog.EventDocumentOpened)
	if err != nil {
		return render.Certificate{}, err
	}
	inserted, err := auditlog.OfType(ctx, tx, documentID, auditlog.EventFieldInserted)
	if err != nil {
		return render.Certificate{}, err
	}

	// Opens are recorded with the recipient as actor, so the viewed
	// timestamp resolves by email rather than recipient id.
	openedByEmail := auditlog.GroupByEmail(opened)

	cert := render.Certificate{Rows: make([]render.CertificateRow, 0, len(recs))}
	for _, rec := range recs {
		row := render.CertificateRow{
			Name:          rec.Name,
			Email:         rec.Email,
			Role:          string(rec.Role),
			SigningReason: rec.Role.SigningReason(),
			AuthLevel:     authLevel(rec),
			SentAt:        latestForRecipient(sent, rec.ID),
			ViewedAt:      lastCreated(openedByEmail[rec.Email]),
		}

		if f := terminalSignatureField(flds, rec.ID); f != nil {
			if signedEntry := latestForField(inserted, f.ID); signedEntry != nil {
				row.SignedAt = &signedEntry.CreatedAt
				row.IPAddress = signedEntry.IPAddress
			}
			if sig, ok := sigs[f.ID]; ok {
				row.SignatureID = signatureID(sig)
				if sig.ImageBase64 != nil {
					png, err := decodeSignatureImage(*sig.ImageBase64)
					if err != nil {
						return render.Certificate{}, err
					}
					row.SignaturePNG = png
				} else if sig.TypedText != nil {
					row.SignatureText = *sig.TypedText
				}
			}
		}

		cert.Rows = append(cert.Rows, row)
	}
	return cert, nil
}

func placement(f fields.Field) render.Placement {
	return render.Placement{
		Page: f.Page,
		Rect: f.Rect,
		Kind: f.Type.RenderKind(),
	}
}

func value(f fields.Field, sigs map[uuid.UUID]fields.Signature) render.Value {
	v := render.Value{Text: f.CustomText}
	if f.Type.SignatureFamily() {
		if sig, ok := sigs[f.ID]; ok && sig.ImageBase64 != nil {
			if png, err := decodeSignatureImage(*sig.ImageBase64); err == nil {
				v.ImagePNG = png
			}
		}
	}
	return v
}

// terminalSignatureField picks the recipient's last inserted
// signature-family field; its insertion event is the certificate's
// signed timestamp.
func terminalSignatureField(flds []fields.Field, recipientID uuid.UUID) *fields.Field {
	var terminal *fields.Field
	for i := range flds {
		f := &flds[i]
		if f.RecipientID == recipientID && f.Type.SignatureFamily() && f.Inserted {
			terminal = f
		}
	}
	return terminal
}

// lastCreated returns the creation time of the final entry in ledger
// order, or nil for an empty bucket.
func lastCreated(entries []auditlog.Entry) *time.Time {
	if len(entries) == 0 {
		return nil
	}
	return &entries[len(entries)-1].CreatedAt
}

func latestForRecipient(entries []auditlog.Entry, recipientID uuid.UUID) *time.Time {
	var latest *time.Time
	for i := range entries {
		e := &entries[i]
		if e.RecipientID != nil && *e.RecipientID == recipientID {
			latest = &e.CreatedAt
		}
	}
	return latest
}

func latestForField(entries []auditlog.Entry, fieldID uuid.UUID) *auditlog.Entry {
	var latest *auditlog.Entry
	for i := range entries {
		e := &entries[i]
		if e.FieldID != nil && *e.FieldID == fieldID {
			latest = e
		}
	}
	return latest
}

func authLevel(rec recipients.Recipient) string {
	if rec.AuthRequired != nil && *rec.AuthRequired != "" {
		return *rec.AuthRequired
	}
	return "Email"
}

func signatureID(sig fields.Signature) string {
	return strings.ToUpper(strings.ReplaceAll(sig.ID.String(), "-", "")[:12])
}
