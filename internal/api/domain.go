package api

import (
	"github.com/quill-sign/quill/internal/auditlog"
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
	"github.com/quill-sign/quill/internal/render"
	"github.com/quill-sign/quill/internal/signing"
	"github.com/quill-sign/quill/internal/templates"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents  documents.System
	Recipients recipients.System
	Fields     fields.System
	AuditLog   auditlog.System
	Templates  templates.System
	Signing    signing.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()
	renderer := render.New(runtime.Render, runtime.Logger)

	return &Domain{
		Documents: documents.New(
			db,
			runtime.Storage,
			runtime.Logger,
			runtime.Pagination,
		),
		Recipients: recipients.New(db, runtime.Logger),
		Fields:     fields.New(db, runtime.Logger),
		AuditLog: auditlog.New(
			db,
			runtime.Logger,
			runtime.Pagination,
		),
		Templates: templates.New(
			db,
			runtime.Storage,
			runtime.Logger,
			runtime.Pagination,
		),
		Signing: signing.New(
			db,
			runtime.Storage,
			renderer,
			runtime.Logger,
		),
	}
}
