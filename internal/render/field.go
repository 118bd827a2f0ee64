package render

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
)

// Mark glyph layout shared by checkbox and radio rendering.
const (
	checkboxMark  = "X"
	radioMark     = "O"
	markFontSize  = 20
	markOffset    = 40
	markTextSpace = 10
)

// EmptyValueSentinel marks an unselected or unfilled value; the
// renderer draws it as blank.
const EmptyValueSentinel = "empty-value-"

// Kind is the visual family a field value renders as. Date, email,
// name, number and dropdown values all render as plain text.
type Kind int

const (
	KindText Kind = iota
	KindSignature
	KindInitials
	KindCheckbox
	KindRadio
)

// family returns the font family for the kind.
func (k Kind) family() Family {
	if k == KindSignature || k == KindInitials {
		return FamilyHandwriting
	}
	return FamilyStandard
}

// Placement describes where and how a single resolved value is burned
// into the document.
type Placement struct {
	Page int // 1-indexed
	Rect Rect
	Kind Kind
}

// Value is the resolved payload for a placement. ImagePNG, when set on
// a signature-family placement, takes precedence over Text.
type Value struct {
	Text     string
	ImagePNG []byte
}

// RenderField draws one field's value onto the PDF buffer and returns
// the updated buffer. A page beyond the document's page count is a
// fatal precondition failure.
func (r *Renderer) RenderField(pdf []byte, p Placement, v Value) ([]byte, error) {
	pageW, pageH, err := r.pageSize(pdf, p.Page)
	if err != nil {
		return nil, err
	}
	box := ToAbsolute(p.Rect, pageW, pageH)

	var stamps []stamp
	switch {
	case (p.Kind == KindSignature || p.Kind == KindInitials) && v.ImagePNG != nil:
		stamps, err = r.imageStamps(p, box, v.ImagePNG)
	case p.Kind == KindCheckbox:
		stamps = r.checkboxStamps(p, box, v.Text)
	case p.Kind == KindRadio:
		stamps = r.radioStamps(p, box, v.Text)
	default:
		if p.Kind.family() == FamilyHandwriting {
			if err := r.ensureFonts(); err != nil {
				return nil, err
			}
		}
		stamps = r.textStamps(p, box, v.Text)
	}
	if err != nil {
		return nil, err
	}

	return r.applyStamps(pdf, stamps)
}

// imageStamps scales the PNG uniformly to fit inside the box without
// upscaling past its natural size, then centers it.
func (r *Renderer) imageStamps(p Placement, box AbsRect, data []byte) ([]stamp, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	imgW := float64(cfg.Width)
	imgH := float64(cfg.Height)

	scale := min(box.Width/imgW, box.Height/imgH, 1)

	drawnW := imgW * scale
	drawnH := imgH * scale
	x := box.X + (box.Width-drawnW)/2
	y := box.Y + (box.Height-drawnH)/2

	return []stamp{imageStamp(p.Page, data, scale, x, y)}, nil
}

// textStamps centers the fitted text inside the box. Multi-line values
// render as a single multi-line stamp.
func (r *Renderer) textStamps(p Placement, box AbsRect, text string) []stamp {
	if text == "" {
		return nil
	}

	fam := p.Kind.family()
	size := r.FitSize(text, box.Width, box.Height, fam)
	textW := r.textWidth(longestLine(text), fam, size)
	lineH := r.lineHeight(fam, size)

	x := box.X + (box.Width-textW)/2
	y := box.Y + (box.Height-lineH)/2

	return []stamp{textStamp(p.Page, text, r.fontName(fam), size, x, y)}
}

// checkboxStamps renders a mark glyph and option label per selected
// value, stacked at a fixed line height from the top edge of the box.
func (r *Renderer) checkboxStamps(p Placement, box AbsRect, text string) []stamp {
	lineH := r.lineHeight(FamilyStandard, markFontSize)
	markW := r.textWidth(checkboxMark, FamilyStandard, markFontSize)
	font := r.fontName(FamilyStandard)

	var stamps []stamp
	top := box.Y + box.Height

	for i, value := range splitSelections(text) {
		y := top - float64(i+1)*lineH

		stamps = append(stamps, textStamp(p.Page, checkboxMark, font, markFontSize, box.X, y))
		if value != "" {
			stamps = append(
				stamps,
				textStamp(p.Page, value, font, markFontSize, box.X+markW+markTextSpace, y),
			)
		}
	}
	return stamps
}

// radioStamps renders a single mark glyph beside the centered label,
// offset left by the fixed mark width.
func (r *Renderer) radioStamps(p Placement, box AbsRect, text string) []stamp {
	label := text
	if strings.Contains(label, EmptyValueSentinel) {
		label = ""
	}

	size := r.FitSize(label, box.Width, box.Height, FamilyStandard)
	textW := r.textWidth(label, FamilyStandard, size)
	font := r.fontName(FamilyStandard)

	textX := box.X + (box.Width-textW)/2
	markY := box.Y + box.Height/2 - float64(markFontSize)/2

	stamps := []stamp{
		textStamp(p.Page, radioMark, font, markFontSize, textX+markFontSize-markOffset, markY),
	}
	if label != "" {
		lineH := r.lineHeight(FamilyStandard, size)
		stamps = append(
			stamps,
			textStamp(p.Page, label, font, size, textX, box.Y+(box.Height-lineH)/2),
		)
	}
	return stamps
}

// splitSelections parses comma-joined checkbox selections, blanking
// sentinel placeholders.
func splitSelections(text string) []string {
	parts := strings.Split(text, ",")
	values := make([]string, 0, len(parts))

	for _, part := range parts {
		value := strings.TrimSpace(part)
		if strings.Contains(value, EmptyValueSentinel) {
			value = ""
		}
		values = append(values, value)
	}
	return values
}
