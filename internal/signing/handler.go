package signing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/pkg/handlers"
	"github.com/quill-sign/quill/pkg/routes"
)

// Handler provides the HTTP surface of the signing state machine: the
// token-scoped signing surface and the owner-scoped lifecycle
// transitions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "signing"),
	}
}

// Routes returns the token-scoped signing surface. Every route resolves
// the recipient through the access token in the path.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sign/{token}",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Open},
			{Method: "POST", Pattern: "/fields/{id}", Handler: h.SignField},
			{Method: "DELETE", Pattern: "/fields/{id}", Handler: h.UnsignField},
			{Method: "POST", Pattern: "/complete", Handler: h.CompleteRecipient},
		},
	}
}

// DocumentRoutes returns the owner-scoped lifecycle transitions nested
// under the document.
func (h *Handler) DocumentRoutes() routes.Group {
	return routes.Group{
		Prefix: "/documents/{documentId}",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/send", Handler: h.SendDocument},
			{Method: "POST", Pattern: "/complete", Handler: h.CompleteDocument},
		},
	}
}

// Open returns the recipient's view of the document and records the
// view in the ledger. Password-protected documents read the password
// from the X-Document-Password header.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.sys.Open(
		r.Context(),
		r.PathValue("token"),
		r.Header.Get("X-Document-Password"),
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

// SignField inserts a value into a field by decoding a SignCommand JSON body.
func (h *Handler) SignField(w http.ResponseWriter, r *http.Request) {
	fieldID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fields.ErrNotFound)
		return
	}

	var cmd fields.SignCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	f, err := h.sys.SignField(
		r.Context(),
		r.PathValue("token"),
		fieldID,
		cmd,
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// UnsignField reverts a signed field to its unsigned state.
func (h *Handler) UnsignField(w http.ResponseWriter, r *http.Request) {
	fieldID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fields.ErrNotFound)
		return
	}

	f, err := h.sys.UnsignField(
		r.Context(),
		r.PathValue("token"),
		fieldID,
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// CompleteRecipient finalizes the token's recipient. When the last
// gating recipient completes, the document itself completes in the
// same request.
func (h *Handler) CompleteRecipient(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.CompleteRecipient(
		r.Context(),
		r.PathValue("token"),
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// SendDocument moves a draft into circulation.
func (h *Handler) SendDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrNotFound)
		return
	}

	doc, err := h.sys.SendDocument(
		r.Context(),
		documentID,
		auditlog.ActorFromRequest(r),
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// CompleteDocument forces completion once every gating recipient has
// signed.
func (h *Handler) CompleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrNotFound)
		return
	}

	doc, err := h.sys.CompleteDocument(
		r.Context(),
		documentID,
		auditlog.ActorFromRequest(r),
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}
