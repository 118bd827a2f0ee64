package render

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// stamp is one drawing primitive positioned in absolute page
// coordinates (bottom-left origin). Exactly one of text or image is set.
type stamp struct {
	page  int
	text  string
	font  string
	size  int
	image []byte
	scale float64
	x, y  float64
}

func textStamp(page int, text, font string, size int, x, y float64) stamp {
	return stamp{page: page, text: text, font: font, size: size, x: x, y: y}
}

func imageStamp(page int, png []byte, scale, x, y float64) stamp {
	return stamp{page: page, image: png, scale: scale, x: x, y: y}
}

// watermark converts the stamp into a pdfcpu on-top watermark.
func (s stamp) watermark() (*model.Watermark, error) {
	if s.image != nil {
		desc := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:%.4f abs, rot:0", s.x, s.y, s.scale)
		return api.ImageWatermarkForReader(bytes.NewReader(s.image), desc, true, false, types.POINTS)
	}

	desc := fmt.Sprintf(
		"fontname:%s, points:%d, pos:bl, off:%.2f %.2f, scale:1 abs, rot:0, fillcolor:#000000",
		s.font, s.size, s.x, s.y,
	)
	return api.TextWatermark(s.text, desc, true, false, types.POINTS)
}

// applyStamps draws each stamp onto the buffer in order. Stamps are
// applied one at a time so multiple values may land on the same page.
func (r *Renderer) applyStamps(pdf []byte, stamps []stamp) ([]byte, error) {
	for _, s := range stamps {
		wm, err := s.watermark()
		if err != nil {
			return nil, fmt.Errorf("build stamp: %w", err)
		}

		var buf bytes.Buffer
		m := map[int]*model.Watermark{s.page: wm}
		if err := api.AddWatermarksMap(bytes.NewReader(pdf), &buf, m, r.conf); err != nil {
			return nil, fmt.Errorf("apply stamp on page %d: %w", s.page, err)
		}
		pdf = buf.Bytes()
	}
	return pdf, nil
}
