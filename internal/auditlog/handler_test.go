package auditlog_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/pkg/pagination"
)

// stubSystem serves canned ledger entries for handler tests.
type stubSystem struct {
	latest *auditlog.Entry
}

func (s *stubSystem) List(
	ctx context.Context,
	documentID uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[auditlog.Entry], error) {
	result := pagination.NewPageResult([]auditlog.Entry{}, 0, page.Page, page.PageSize)
	return &result, nil
}

func (s *stubSystem) Latest(
	ctx context.Context,
	documentID uuid.UUID,
	t auditlog.EventType,
) (*auditlog.Entry, error) {
	return s.latest, nil
}

func (s *stubSystem) Append(
	ctx context.Context,
	cmd auditlog.AppendCommand,
) (*auditlog.Entry, error) {
	return nil, nil
}

func latestRequest(documentID, eventType string) *http.Request {
	target := fmt.Sprintf("/documents/%s/auditlog/latest?type=%s", documentID, eventType)
	req := httptest.NewRequest("GET", target, nil)
	req.SetPathValue("documentId", documentID)
	return req
}

func TestHandlerLatest(t *testing.T) {
	documentID := uuid.New()
	entry := &auditlog.Entry{
		ID:         7,
		DocumentID: documentID,
		Type:       auditlog.EventDocumentSent,
		ActorName:  "Dana Whitfield",
		ActorEmail: "dana@example.com",
		CreatedAt:  time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
	}

	h := auditlog.NewHandler(&stubSystem{latest: entry}, slog.Default(), pagination.Config{})

	rec := httptest.NewRecorder()
	h.Latest(rec, latestRequest(documentID.String(), "DOCUMENT_SENT"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
}

func TestHandlerLatestNoEntry(t *testing.T) {
	h := auditlog.NewHandler(&stubSystem{}, slog.Default(), pagination.Config{})

	rec := httptest.NewRecorder()
	h.Latest(rec, latestRequest(uuid.NewString(), "DOCUMENT_SENT"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandlerLatestRejectsUnknownType(t *testing.T) {
	h := auditlog.NewHandler(&stubSystem{}, slog.Default(), pagination.Config{})

	rec := httptest.NewRecorder()
	h.Latest(rec, latestRequest(uuid.NewString(), "NOT_AN_EVENT"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandlerLatestRejectsBadDocumentID(t *testing.T) {
	h := auditlog.NewHandler(&stubSystem{}, slog.Default(), pagination.Config{})

	rec := httptest.NewRecorder()
	h.Latest(rec, latestRequest("not-a-uuid", "DOCUMENT_SENT"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}
