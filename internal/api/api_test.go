package api_test

import (
	"testing"

	"github.com/quill-sign/quill/internal/api"
	"github.com/quill-sign/quill/internal/config"
	"github.com/quill-sign/quill/internal/infrastructure"
	"github.com/quill-sign/quill/internal/render"
	"github.com/quill-sign/quill/pkg/database"
	"github.com/quill-sign/quill/pkg/middleware"
	"github.com/quill-sign/quill/pkg/pagination"
	"github.com/quill-sign/quill/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=quillstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/quillstore;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "quill",
			User:            "quill",
			Password:        "quill",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "documents",
			ConnectionString: azuriteConnString,
		},
		Render: render.Config{
			StandardFont:        "Helvetica",
			HandwritingFont:     "Caveat-Regular",
			HandwritingFontFile: "fonts/Caveat-Regular.ttf",
		},
		API: config.APIConfig{
			BasePath: "/api",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Render.HandwritingFont != "Caveat-Regular" {
		t.Errorf("render handwriting font: got %s, want Caveat-Regular", runtime.Render.HandwritingFont)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)

	domain := api.NewDomain(runtime)
	if domain == nil {
		t.Fatal("NewDomain() returned nil")
	}
	if domain.Documents == nil {
		t.Error("documents system is nil")
	}
	if domain.Recipients == nil {
		t.Error("recipients system is nil")
	}
	if domain.Fields == nil {
		t.Error("fields system is nil")
	}
	if domain.AuditLog == nil {
		t.Error("auditlog system is nil")
	}
	if domain.Templates == nil {
		t.Error("templates system is nil")
	}
	if domain.Signing == nil {
		t.Error("signing system is nil")
	}
}
