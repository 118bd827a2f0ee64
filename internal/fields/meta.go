package fields

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MetaType tags a Meta with the field kind it constrains. The set is
// closed; validation matches it exhaustively against the field type.
type MetaType string

const (
	MetaText     MetaType = "text"
	MetaNumber   MetaType = "number"
	MetaCheckbox MetaType = "checkbox"
	MetaRadio    MetaType = "radio"
	MetaDropdown MetaType = "dropdown"
)

// metaTypeFor maps field types onto their required meta tag.
var metaTypeFor = map[Type]MetaType{
	TypeText:     MetaText,
	TypeNumber:   MetaNumber,
	TypeCheckbox: MetaCheckbox,
	TypeRadio:    MetaRadio,
	TypeDropdown: MetaDropdown,
}

// MetaValue is one selectable option of a checkbox, radio, or dropdown
// field.
type MetaValue struct {
	Value string `json:"value"`
}

// Meta constrains how a field is filled. Which attributes apply depends
// on the Type tag; Validate enforces the per-kind schema at the
// boundary before anything enters the state machine.
type Meta struct {
	Type           MetaType    `json:"type"`
	Label          string      `json:"label,omitempty"`
	Placeholder    string      `json:"placeholder,omitempty"`
	Required       bool        `json:"required,omitempty"`
	ReadOnly       bool        `json:"read_only,omitempty"`
	Values         []MetaValue `json:"values,omitempty"`
	DefaultValue   string      `json:"default_value,omitempty"`
	MinValue       *float64    `json:"min_value,omitempty"`
	MaxValue       *float64    `json:"max_value,omitempty"`
	CharacterLimit *int        `json:"character_limit,omitempty"`
}

// Validate checks the meta against the field type it is attached to.
// A declared meta type that does not match the field type is rejected
// before persistence.
func (m *Meta) Validate(fieldType Type) error {
	want, ok := metaTypeFor[fieldType]
	if !ok {
		// Signature, initials, date, email and name fields carry no meta.
		if m != nil && m.Type != "" {
			return fmt.Errorf("%w: %s fields carry no meta", ErrMetaMismatch, fieldType)
		}
		return nil
	}

	if m == nil {
		return fmt.Errorf("%w: %s", ErrMetaRequired, fieldType)
	}
	if m.Type != want {
		return fmt.Errorf("%w: declared %q, field is %s", ErrMetaMismatch, m.Type, fieldType)
	}
	if m.Required && m.ReadOnly {
		return fmt.Errorf("%w: field cannot be both required and read-only", ErrMetaInvalid)
	}

	switch m.Type {
	case MetaText:
		return m.validateText()
	case MetaNumber:
		return m.validateNumber()
	case MetaCheckbox, MetaRadio, MetaDropdown:
		return m.validateOptions()
	}
	return nil
}

func (m *Meta) validateText() error {
	if m.CharacterLimit != nil && *m.CharacterLimit < 1 {
		return fmt.Errorf("%w: character limit must be positive", ErrMetaInvalid)
	}
	if m.CharacterLimit != nil && len(m.DefaultValue) > *m.CharacterLimit {
		return fmt.Errorf("%w: default value exceeds character limit", ErrMetaInvalid)
	}
	return nil
}

func (m *Meta) validateNumber() error {
	if m.MinValue != nil && m.MaxValue != nil && *m.MinValue > *m.MaxValue {
		return fmt.Errorf("%w: min value exceeds max value", ErrMetaInvalid)
	}
	if m.DefaultValue != "" {
		v, err := strconv.ParseFloat(m.DefaultValue, 64)
		if err != nil {
			return fmt.Errorf("%w: default value is not numeric", ErrMetaInvalid)
		}
		if m.MinValue != nil && v < *m.MinValue {
			return fmt.Errorf("%w: default value below minimum", ErrMetaInvalid)
		}
		if m.MaxValue != nil && v > *m.MaxValue {
			return fmt.Errorf("%w: default value above maximum", ErrMetaInvalid)
		}
	}
	return nil
}

func (m *Meta) validateOptions() error {
	if m.ReadOnly && len(m.Values) == 0 {
		return fmt.Errorf("%w: read-only field must declare at least one value", ErrMetaInvalid)
	}
	if m.DefaultValue != "" && !m.hasValue(m.DefaultValue) {
		return fmt.Errorf("%w: default value must be one of the declared values", ErrMetaInvalid)
	}
	return nil
}

func (m *Meta) hasValue(v string) bool {
	return slices.ContainsFunc(m.Values, func(mv MetaValue) bool {
		return mv.Value == v
	})
}

// ValidateInput checks a recipient-supplied value against the meta
// constraints on the signing surface. Option-backed kinds delegate to
// ValidateSelection; text and number kinds enforce their limits.
func (m *Meta) ValidateInput(value string) error {
	if m == nil {
		return nil
	}

	switch m.Type {
	case MetaText:
		if m.Required && strings.TrimSpace(value) == "" {
			return ErrSelectionRequired
		}
		if m.CharacterLimit != nil && len(value) > *m.CharacterLimit {
			return fmt.Errorf("%w: value exceeds character limit", ErrInvalidSelection)
		}
		return nil
	case MetaNumber:
		if strings.TrimSpace(value) == "" {
			if m.Required {
				return ErrSelectionRequired
			}
			return nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: value is not numeric", ErrInvalidSelection)
		}
		if m.MinValue != nil && v < *m.MinValue {
			return fmt.Errorf("%w: value below minimum", ErrInvalidSelection)
		}
		if m.MaxValue != nil && v > *m.MaxValue {
			return fmt.Errorf("%w: value above maximum", ErrInvalidSelection)
		}
		return nil
	default:
		return m.ValidateSelection(value)
	}
}

// ValidateSelection checks a recipient-supplied selection against the
// declared values. Checkbox selections arrive comma-joined; required
// fields demand at least one concrete selection on the signing surface.
func (m *Meta) ValidateSelection(value string) error {
	if m == nil {
		return nil
	}

	selections := splitValues(value)
	if m.Required && len(selections) == 0 {
		return ErrSelectionRequired
	}
	if len(m.Values) == 0 {
		return nil
	}

	for _, s := range selections {
		if !m.hasValue(s) {
			return fmt.Errorf("%w: %q", ErrInvalidSelection, s)
		}
	}
	return nil
}

func splitValues(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}
