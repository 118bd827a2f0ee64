package fields

import (
	"encoding/json"
	"slices"

	"github.com/quill-sign/quill/internal/render"
)

// Type identifies the kind of value a field collects.
type Type string

// Valid field types. FreeSignature survives as a stored and renderable
// type but cannot be created through the field-creation surface.
const (
	TypeSignature     Type = "SIGNATURE"
	TypeFreeSignature Type = "FREE_SIGNATURE"
	TypeInitials      Type = "INITIALS"
	TypeDate          Type = "DATE"
	TypeText          Type = "TEXT"
	TypeNumber        Type = "NUMBER"
	TypeEmail         Type = "EMAIL"
	TypeName          Type = "NAME"
	TypeCheckbox      Type = "CHECKBOX"
	TypeRadio         Type = "RADIO"
	TypeDropdown      Type = "DROPDOWN"
)

var types = []Type{
	TypeSignature,
	TypeFreeSignature,
	TypeInitials,
	TypeDate,
	TypeText,
	TypeNumber,
	TypeEmail,
	TypeName,
	TypeCheckbox,
	TypeRadio,
	TypeDropdown,
}

// Types returns the list of valid field types.
func Types() []Type {
	return types
}

// ParseType validates a string as a known field type.
func ParseType(s string) (Type, error) {
	v := Type(s)
	if !slices.Contains(types, v) {
		return "", ErrInvalidType
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known field type.
func (t *Type) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseType(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SignatureFamily reports whether the field collects a drawn or typed
// signature payload rendered in the handwriting face.
func (t Type) SignatureFamily() bool {
	return t == TypeSignature || t == TypeFreeSignature || t == TypeInitials
}

// RequiresMeta reports whether field creation demands a typed meta
// object describing the field's constraints.
func (t Type) RequiresMeta() bool {
	switch t {
	case TypeText, TypeNumber, TypeCheckbox, TypeRadio, TypeDropdown:
		return true
	}
	return false
}

// Creatable reports whether the type may be created through the API.
func (t Type) Creatable() bool {
	return t != TypeFreeSignature
}

// RenderKind maps the field type onto its visual rendering family.
func (t Type) RenderKind() render.Kind {
	switch t {
	case TypeSignature, TypeFreeSignature:
		return render.KindSignature
	case TypeInitials:
		return render.KindInitials
	case TypeCheckbox:
		return render.KindCheckbox
	case TypeRadio:
		return render.KindRadio
	default:
		return render.KindText
	}
}
