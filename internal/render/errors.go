package render

import "errors"

// Rendering errors. They abort the enclosing operation; a field is
// never silently dropped from the output.
var (
	ErrPageOutOfRange = errors.New("field references a page beyond the document page count")
	ErrCorruptImage   = errors.New("signature image payload is not a valid PNG")
	ErrMissingFont    = errors.New("handwriting font file is missing or unreadable")
)
