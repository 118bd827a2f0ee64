package render

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/font"
)

// Font family defaults. Signature and initials values render in the
// handwriting face, which starts larger and is allowed to shrink
// further than the standard face.
const (
	DefaultHandwritingSize = 50
	MinHandwritingSize     = 7
	DefaultStandardSize    = 15
	MinStandardSize        = 8
)

// Family selects one of the two font families used for field values.
type Family int

const (
	FamilyStandard Family = iota
	FamilyHandwriting
)

// Bounds returns the default (maximum) and minimum font sizes for the family.
func (f Family) Bounds() (def, min int) {
	if f == FamilyHandwriting {
		return DefaultHandwritingSize, MinHandwritingSize
	}
	return DefaultStandardSize, MinStandardSize
}

// fontName resolves the configured face for a family.
func (r *Renderer) fontName(f Family) string {
	if f == FamilyHandwriting {
		return r.cfg.HandwritingFont
	}
	return r.cfg.StandardFont
}

// FitSize returns the largest font size no greater than the family
// default such that text (its longest line) fits the given box. The
// result never drops below the family minimum; if even the minimum
// overflows, the minimum is returned and the caller renders anyway.
func (r *Renderer) FitSize(text string, boxW, boxH float64, f Family) int {
	def, min := f.Bounds()
	name := r.fontName(f)

	line := longestLine(text)
	if line == "" {
		return def
	}

	textW := font.TextWidth(line, name, def)
	lineH := font.LineHeight(name, def)

	scale := 1.0
	if textW > 0 && boxW/textW < scale {
		scale = boxW / textW
	}
	if lineH > 0 && boxH/lineH < scale {
		scale = boxH / lineH
	}

	size := int(float64(def) * scale)
	if size > def {
		size = def
	}
	if size < min {
		size = min
	}
	return size
}

// textWidth measures a single line at the given size.
func (r *Renderer) textWidth(line string, f Family, size int) float64 {
	return font.TextWidth(line, r.fontName(f), size)
}

// lineHeight measures the line height of the family face at the given size.
func (r *Renderer) lineHeight(f Family, size int) float64 {
	return font.LineHeight(r.fontName(f), size)
}

func longestLine(text string) string {
	longest := ""
	for _, line := range strings.Split(text, "\n") {
		if len(line) > len(longest) {
			longest = line
		}
	}
	return longest
}
