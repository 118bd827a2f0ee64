package api

import (
	"github.com/quill-sign/quill/internal/config"
	"github.com/quill-sign/quill/internal/infrastructure"
	"github.com/quill-sign/quill/internal/render"
	"github.com/quill-sign/quill/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Render     render.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Render:     cfg.Render,
		Pagination: cfg.API.Pagination,
	}
}
