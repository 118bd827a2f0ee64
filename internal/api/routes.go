package api

import (
	"net/http"

	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/config"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
	"github.com/quill-sign/quill/internal/signing"
	"github.com/quill-sign/quill/internal/templates"
	"github.com/quill-sign/quill/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	signingHandler := signing.NewHandler(domain.Signing, runtime.Logger)
	templatesHandler := templates.NewHandler(
		domain.Templates,
		runtime.Logger,
		runtime.Pagination,
		maxUpload,
	)

	routes.Register(
		mux,
		domain.Documents.Handler(maxUpload).Routes(),
		recipients.NewHandler(domain.Recipients, runtime.Logger).Routes(),
		fields.NewHandler(domain.Fields, runtime.Logger).Routes(),
		auditlog.NewHandler(domain.AuditLog, runtime.Logger, runtime.Pagination).Routes(),
		signingHandler.Routes(),
		signingHandler.DocumentRoutes(),
		templatesHandler.Routes(),
		templatesHandler.DirectRoutes(),
	)
}
