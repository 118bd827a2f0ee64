// Package render burns recipient-supplied field values into PDF pages
// and composes the trailing signing-certificate pages. All operations
// are pure transformations of a single document's byte buffer; nothing
// in this package holds cross-document state, so renderers may run in
// parallel across documents.
package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Renderer draws field values and certificate pages onto PDF buffers.
// It owns the font session: the handwriting TrueType face is installed
// into the engine's user font registry once, on first render.
type Renderer struct {
	cfg    Config
	conf   *model.Configuration
	logger *slog.Logger

	fontOnce sync.Once
	fontErr  error
}

// New creates a Renderer from the given configuration.
func New(cfg Config, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		conf:   model.NewDefaultConfiguration(),
		logger: logger.With("system", "render"),
	}
}

// ensureFonts installs the handwriting face on first use. The standard
// face is a core font and needs no installation.
func (r *Renderer) ensureFonts() error {
	r.fontOnce.Do(func() {
		if _, err := os.Stat(r.cfg.HandwritingFontFile); err != nil {
			r.fontErr = fmt.Errorf("%w: %s", ErrMissingFont, r.cfg.HandwritingFontFile)
			return
		}
		if err := api.InstallFonts([]string{r.cfg.HandwritingFontFile}); err != nil {
			r.fontErr = fmt.Errorf("install handwriting font: %w", err)
			return
		}
		r.logger.Info("handwriting font installed", "file", r.cfg.HandwritingFontFile)
	})
	return r.fontErr
}

// PageCount returns the number of pages in the PDF buffer.
func (r *Renderer) PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), r.conf)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

// pageSize returns the media box dimensions of a 1-indexed page.
// Referencing a page beyond the document is a precondition failure.
func (r *Renderer) pageSize(pdf []byte, page int) (w, h float64, err error) {
	dims, err := api.PageDims(bytes.NewReader(pdf), r.conf)
	if err != nil {
		return 0, 0, fmt.Errorf("page dims: %w", err)
	}
	if page < 1 || page > len(dims) {
		return 0, 0, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, len(dims))
	}
	return dims[page-1].Width, dims[page-1].Height, nil
}
