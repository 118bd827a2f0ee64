package render

// Rect is a field rectangle expressed as percentages of page width and
// height, anchored at the top-left corner of the page. All components
// are in the range [0, 100].
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether every component lies within [0, 100].
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// AbsRect is a rectangle in PDF user space points, anchored at the
// bottom-left corner of the page (PDF coordinate origin).
type AbsRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ToAbsolute converts a percentage rect into absolute page coordinates,
// flipping the Y axis from the stored top-left origin to the PDF
// bottom-left origin.
func ToAbsolute(r Rect, pageWidth, pageHeight float64) AbsRect {
	w := pageWidth * r.Width / 100
	h := pageHeight * r.Height / 100
	x := pageWidth * r.X / 100
	y := pageHeight - (pageHeight * r.Y / 100) - h

	return AbsRect{X: x, Y: y, Width: w, Height: h}
}

// ToRelative inverts ToAbsolute, recovering the percentage rect from
// absolute page coordinates.
func ToRelative(a AbsRect, pageWidth, pageHeight float64) Rect {
	return Rect{
		X:      a.X / pageWidth * 100,
		Y:      (pageHeight - a.Y - a.Height) / pageHeight * 100,
		Width:  a.Width / pageWidth * 100,
		Height: a.Height / pageHeight * 100,
	}
}
