package fields

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/pkg/handlers"
	"github.com/quill-sign/quill/pkg/routes"
)

// Handler provides HTTP endpoints for field placement operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "fields"),
	}
}

// Routes returns the route group definition for field endpoints,
// nested under the owning document.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents/{documentId}/fields",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns every field of a document in placement order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	result, err := h.sys.ListForDocument(r.Context(), documentID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single field by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	documentID, id, err := pathIDs(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	f, err := h.sys.Find(r.Context(), documentID, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Create places a new field by decoding a CreateCommand JSON body.
// Returns 201 with the created field on success.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.DocumentID = documentID

	f, err := h.sys.Create(
		r.Context(),
		cmd,
		auditlog.ActorFromRequest(r),
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, f)
}

// Update repositions an unsigned field by decoding an UpdateCommand JSON body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	documentID, id, err := pathIDs(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	f, err := h.sys.Update(
		r.Context(),
		documentID, id,
		cmd,
		auditlog.ActorFromRequest(r),
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Delete removes an unsigned field by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID, id, err := pathIDs(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(
		r.Context(),
		documentID, id,
		auditlog.ActorFromRequest(r),
		auditlog.MetadataFromRequest(r),
	); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathIDs(r *http.Request) (documentID, id uuid.UUID, err error) {
	documentID, err = uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err = uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return documentID, id, nil
}
