package auditlog

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/pkg/handlers"
	"github.com/quill-sign/quill/pkg/pagination"
	"github.com/quill-sign/quill/pkg/routes"
)

// Handler provides the read-only HTTP surface of the ledger.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "auditlog"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for ledger endpoints,
// nested under the owning document.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents/{documentId}/auditlog",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/latest", Handler: h.Latest},
		},
	}
}

// List returns a paginated slice of a document's ledger in insertion
// order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), documentID, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Latest returns the most recent ledger entry of the requested type for
// a document, resolved by the ?type= query parameter.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	t, err := ParseEventType(r.URL.Query().Get("type"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	entry, err := h.sys.Latest(r.Context(), documentID, t)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if entry == nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}
