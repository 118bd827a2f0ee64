package fields_test

import (
	"errors"
	"testing"

	"github.com/quill-sign/quill/internal/fields"
)

func intPtr(v int) *int         { return &v }
func floatPtr(v float64) *float64 { return &v }

func options(vals ...string) []fields.MetaValue {
	out := make([]fields.MetaValue, len(vals))
	for i, v := range vals {
		out[i] = fields.MetaValue{Value: v}
	}
	return out
}

func TestMetaValidate(t *testing.T) {
	tests := []struct {
		name      string
		fieldType fields.Type
		meta      *fields.Meta
		wantErr   error
	}{
		{
			name:      "signature carries no meta",
			fieldType: fields.TypeSignature,
		},
		{
			name:      "signature rejects declared meta",
			fieldType: fields.TypeSignature,
			meta:      &fields.Meta{Type: fields.MetaText},
			wantErr:   fields.ErrMetaMismatch,
		},
		{
			name:      "text requires meta",
			fieldType: fields.TypeText,
			wantErr:   fields.ErrMetaRequired,
		},
		{
			name:      "text meta accepted",
			fieldType: fields.TypeText,
			meta:      &fields.Meta{Type: fields.MetaText, Label: "Comments"},
		},
		{
			name:      "meta tag must match field type",
			fieldType: fields.TypeText,
			meta:      &fields.Meta{Type: fields.MetaNumber},
			wantErr:   fields.ErrMetaMismatch,
		},
		{
			name:      "required and read-only conflict",
			fieldType: fields.TypeText,
			meta:      &fields.Meta{Type: fields.MetaText, Required: true, ReadOnly: true},
			wantErr:   fields.ErrMetaInvalid,
		},
		{
			name:      "character limit must be positive",
			fieldType: fields.TypeText,
			meta:      &fields.Meta{Type: fields.MetaText, CharacterLimit: intPtr(0)},
			wantErr:   fields.ErrMetaInvalid,
		},
		{
			name:      "default exceeds character limit",
			fieldType: fields.TypeText,
			meta: &fields.Meta{
				Type:           fields.MetaText,
				DefaultValue:   "too long",
				CharacterLimit: intPtr(3),
			},
			wantErr: fields.ErrMetaInvalid,
		},
		{
			name:      "number bounds ordered",
			fieldType: fields.TypeNumber,
			meta: &fields.Meta{
				Type:     fields.MetaNumber,
				MinValue: floatPtr(10),
				MaxValue: floatPtr(1),
			},
			wantErr: fields.ErrMetaInvalid,
		},
		{
			name:      "number default must be numeric",
			fieldType: fields.TypeNumber,
			meta:      &fields.Meta{Type: fields.MetaNumber, DefaultValue: "abc"},
			wantErr:   fields.ErrMetaInvalid,
		},
		{
			name:      "number default within bounds",
			fieldType: fields.TypeNumber,
			meta: &fields.Meta{
				Type:         fields.MetaNumber,
				DefaultValue: "5",
				MinValue:     floatPtr(1),
				MaxValue:     floatPtr(10),
			},
		},
		{
			name:      "number default below minimum",
			fieldType: fields.TypeNumber,
			meta: &fields.Meta{
				Type:         fields.MetaNumber,
				DefaultValue: "0",
				MinValue:     floatPtr(1),
			},
			wantErr: fields.ErrMetaInvalid,
		},
		{
			name:      "read-only radio needs values",
			fieldType: fields.TypeRadio,
			meta:      &fields.Meta{Type: fields.MetaRadio, ReadOnly: true},
			wantErr:   fields.ErrMetaInvalid,
		},
		{
			name:      "dropdown default must be declared",
			fieldType: fields.TypeDropdown,
			meta: &fields.Meta{
				Type:         fields.MetaDropdown,
				Values:       options("a", "b"),
				DefaultValue: "c",
			},
			wantErr: fields.ErrMetaInvalid,
		},
		{
			name:      "checkbox meta accepted",
			fieldType: fields.TypeCheckbox,
			meta: &fields.Meta{
				Type:         fields.MetaCheckbox,
				Values:       options("red", "green"),
				DefaultValue: "red",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate(tt.fieldType)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMetaValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		meta    *fields.Meta
		value   string
		wantErr error
	}{
		{
			name:  "nil meta accepts anything",
			value: "whatever",
		},
		{
			name:    "required text rejects blank",
			meta:    &fields.Meta{Type: fields.MetaText, Required: true},
			value:   "   ",
			wantErr: fields.ErrSelectionRequired,
		},
		{
			name:  "optional text accepts blank",
			meta:  &fields.Meta{Type: fields.MetaText},
			value: "",
		},
		{
			name:    "text over character limit",
			meta:    &fields.Meta{Type: fields.MetaText, CharacterLimit: intPtr(4)},
			value:   "hello",
			wantErr: fields.ErrInvalidSelection,
		},
		{
			name:    "number rejects non-numeric",
			meta:    &fields.Meta{Type: fields.MetaNumber},
			value:   "abc",
			wantErr: fields.ErrInvalidSelection,
		},
		{
			name:    "number below minimum",
			meta:    &fields.Meta{Type: fields.MetaNumber, MinValue: floatPtr(5)},
			value:   "3",
			wantErr: fields.ErrInvalidSelection,
		},
		{
			name:    "number above maximum",
			meta:    &fields.Meta{Type: fields.MetaNumber, MaxValue: floatPtr(5)},
			value:   "9",
			wantErr: fields.ErrInvalidSelection,
		},
		{
			name:  "number within bounds",
			meta:  &fields.Meta{Type: fields.MetaNumber, MinValue: floatPtr(1), MaxValue: floatPtr(10)},
			value: "7",
		},
		{
			name:    "required number rejects blank",
			meta:    &fields.Meta{Type: fields.MetaNumber, Required: true},
			value:   "",
			wantErr: fields.ErrSelectionRequired,
		},
		{
			name:  "radio selection among declared values",
			meta:  &fields.Meta{Type: fields.MetaRadio, Values: options("yes", "no")},
			value: "yes",
		},
		{
			name:    "radio selection outside declared values",
			meta:    &fields.Meta{Type: fields.MetaRadio, Values: options("yes", "no")},
			value:   "maybe",
			wantErr: fields.ErrInvalidSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.ValidateInput(tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateInput(%q) = %v, want %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestMetaValidateSelection(t *testing.T) {
	meta := &fields.Meta{
		Type:     fields.MetaCheckbox,
		Required: true,
		Values:   options("red", "green", "blue"),
	}

	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"single selection", "red", nil},
		{"multiple selections", "red,blue", nil},
		{"blank required", "", fields.ErrSelectionRequired},
		{"undeclared selection", "red,yellow", fields.ErrInvalidSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := meta.ValidateSelection(tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSelection(%q) = %v, want %v", tt.value, err, tt.wantErr)
			}
		})
	}

	t.Run("open selection without declared values", func(t *testing.T) {
		open := &fields.Meta{Type: fields.MetaCheckbox}
		if err := open.ValidateSelection("anything"); err != nil {
			t.Errorf("ValidateSelection() = %v, want nil", err)
		}
	})
}
