// Package form describes form fields and validates submitted values against their rules.
package form

import (
	"sort"

	"github.com/trezcool/masomo-admin/core"
)

type Type string

const (
	Text     Type = "text"
	Email    Type = "email"
	Password Type = "password"
	Number   Type = "number"
	Textarea Type = "textarea"
	Select   Type = "select"
	Checkbox Type = "checkbox"
	Date     Type = "date"
)

type Option struct {
	Value string
	Label string
}

// Rules are checked in order: required, min length, max length, pattern, custom.
type Rules struct {
	Required       bool
	MinLength      int
	MaxLength      int
	Pattern        string
	PatternMessage string
	// Custom receives the field value and every submitted value.
	Custom func(value string, values map[string]string) string
}

type Field struct {
	Name        string
	Label       string
	Type        Type
	Placeholder string
	HelpText    string
	Options     []Option
	Value       string
	Disabled    bool
	Rules       Rules
	Error       string
}

// ID is the element id of the field input.
func (f Field) ID() string {
	return "field-" + f.Name
}

func (f Field) HasError() bool {
	return f.Error != ""
}

// Checked reports whether a checkbox field holds a truthy value.
func (f Field) Checked() bool {
	switch f.Value {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func (f Field) Selected(opt Option) bool {
	return f.Value == opt.Value
}

func (f Field) InputClasses() string {
	base := "block w-full rounded-md border px-3 py-2 text-sm shadow-sm focus:outline-none focus:ring-2"
	switch {
	case f.HasError():
		return base + " border-red-500 focus:ring-red-500"
	case f.Disabled:
		return base + " border-gray-200 bg-gray-100 cursor-not-allowed"
	default:
		return base + " border-gray-300 focus:ring-blue-500"
	}
}

// Errors maps field names to their validation message.
type Errors map[string]string

// Err converts non-empty errors to a core.ValidationError, ordered by field name.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	flds := make([]core.FieldError, 0, len(names))
	for _, name := range names {
		flds = append(flds, core.FieldError{Field: name, Error: e[name]})
	}
	return core.NewValidationError(nil, flds...)
}

type Form struct {
	Fields    []Field
	validator *Validator
}

func New(v *Validator, fields ...Field) *Form {
	if v == nil {
		v = NewValidator()
	}
	return &Form{Fields: fields, validator: v}
}

// Field returns the field named name.
func (f *Form) Field(name string) (Field, bool) {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// Validate checks every enabled field and returns the failing ones.
func (f *Form) Validate(values map[string]string) Errors {
	errs := make(Errors)
	for _, fld := range f.Fields {
		if fld.Disabled {
			continue
		}
		if msg := f.validator.Field(fld, values[fld.Name], values); msg != "" {
			errs[fld.Name] = msg
		}
	}
	return errs
}

// Bind returns copies of the fields carrying the submitted values and their errors.
// Password values are never echoed back.
func (f *Form) Bind(values map[string]string, errs Errors) []Field {
	out := make([]Field, len(f.Fields))
	for i, fld := range f.Fields {
		if v, ok := values[fld.Name]; ok && fld.Type != Password {
			fld.Value = v
		}
		fld.Error = errs[fld.Name]
		out[i] = fld
	}
	return out
}

// Values keeps only the submitted values of enabled fields.
func (f *Form) Values(values map[string]string) map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, fld := range f.Fields {
		if fld.Disabled {
			continue
		}
		if v, ok := values[fld.Name]; ok {
			out[fld.Name] = v
		}
	}
	return out
}
