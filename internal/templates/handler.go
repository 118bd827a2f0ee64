package templates

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/pkg/handlers"
	"github.com/quill-sign/quill/pkg/pagination"
	"github.com/quill-sign/quill/pkg/routes"
)

// Handler provides HTTP endpoints for template operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "templates"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for template endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/templates",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/{id}/duplicate", Handler: h.Duplicate},
			{Method: "POST", Pattern: "/{id}/generate", Handler: h.Generate},
			{Method: "POST", Pattern: "/{id}/recipients", Handler: h.AddPlaceholder},
			{Method: "DELETE", Pattern: "/{id}/recipients/{rid}", Handler: h.RemovePlaceholder},
			{Method: "POST", Pattern: "/{id}/fields", Handler: h.AddField},
			{Method: "DELETE", Pattern: "/{id}/fields/{fid}", Handler: h.RemoveField},
			{Method: "POST", Pattern: "/{id}/direct", Handler: h.CreateDirectLink},
			{Method: "PUT", Pattern: "/{id}/direct", Handler: h.ToggleDirectLink},
			{Method: "DELETE", Pattern: "/{id}/direct", Handler: h.DeleteDirectLink},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// DirectRoutes returns the public direct-link surface.
func (h *Handler) DirectRoutes() routes.Group {
	return routes.Group{
		Prefix: "/template/direct/{token}",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.InstantiateDirect},
		},
	}
}

// List returns a paginated list of templates with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a template and its placeholder graph.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	detail, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, detail)
}

// Upload processes a multipart form upload containing a PDF and an
// optional title.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotPDF)
		return
	}

	cmd := CreateCommand{
		Data:      data,
		Title:     r.FormValue("title"),
		Filename:  header.Filename,
		OwnerID:   ownerID(r),
		PageCount: pageCount,
	}

	tpl, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, tpl)
}

// Duplicate deep copies a template.
func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	tpl, err := h.sys.Duplicate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, tpl)
}

// Generate instantiates a draft document by decoding a GenerateCommand JSON body.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd GenerateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Generate(
		r.Context(),
		id,
		cmd,
		auditlog.ActorFromRequest(r),
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// AddPlaceholder adds a recipient slot by decoding a PlaceholderCommand JSON body.
func (h *Handler) AddPlaceholder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd PlaceholderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := h.sys.AddPlaceholder(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, p)
}

// RemovePlaceholder deletes a recipient slot and its fields.
func (h *Handler) RemovePlaceholder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}
	rid, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrPlaceholderNotFound)
		return
	}

	if err := h.sys.RemovePlaceholder(r.Context(), id, rid); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddField binds a field to a slot by decoding a PlaceholderFieldCommand JSON body.
func (h *Handler) AddField(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd PlaceholderFieldCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	f, err := h.sys.AddField(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, f)
}

// RemoveField deletes a template field.
func (h *Handler) RemoveField(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}
	fid, err := uuid.Parse(r.PathValue("fid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrFieldNotFound)
		return
	}

	if err := h.sys.RemoveField(r.Context(), id, fid); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateDirectLink mints the template's public token by decoding a DirectLinkCommand JSON body.
func (h *Handler) CreateDirectLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd DirectLinkCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	link, err := h.sys.CreateDirectLink(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, link)
}

// ToggleDirectLink enables or disables the direct link via a JSON body
// with an "enabled" flag.
func (h *Handler) ToggleDirectLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	link, err := h.sys.SetDirectLinkEnabled(r.Context(), id, body.Enabled)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, link)
}

// DeleteDirectLink removes the template's public token.
func (h *Handler) DeleteDirectLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.DeleteDirectLink(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// InstantiateDirect serves a public direct-link visit by decoding the
// visitor's identity from the JSON body.
func (h *Handler) InstantiateDirect(w http.ResponseWriter, r *http.Request) {
	var visitor RecipientOverride
	if err := json.NewDecoder(r.Body).Decode(&visitor); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	inst, err := h.sys.InstantiateDirect(
		r.Context(),
		r.PathValue("token"),
		visitor,
		auditlog.MetadataFromRequest(r),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, inst)
}

// Delete removes a template and its placeholder graph.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ownerID(r *http.Request) uuid.UUID {
	if id, err := uuid.Parse(r.Header.Get("X-Actor-Id")); err == nil {
		return id
	}
	return uuid.Nil
}
