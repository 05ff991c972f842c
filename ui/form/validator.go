package form

import (
	"regexp"
	"strconv"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-admin/core"
)

var (
	minLengthText = "must be at least {0} characters long"
	maxLengthText = "must be at most {0} characters long"
	patternText   = "invalid format"
)

// Validator checks single field values; messages are translated plain text.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

func NewValidator() *Validator {
	validate, translator := core.NewValidator()
	core.RegisterCustomTranslation(validate, translator, "min", minLengthText, true)
	core.RegisterCustomTranslation(validate, translator, "max", maxLengthText, true)
	return &Validator{
		validate:   validate,
		translator: translator,
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// Field returns the message of the first rule value fails, or "".
func (v *Validator) Field(fld Field, value string, values map[string]string) string {
	value = core.CleanString(value)
	r := fld.Rules

	if value == "" {
		if r.Required {
			return v.check(value, "required")
		}
		return ""
	}
	if r.MinLength > 0 {
		if msg := v.check(value, "min="+strconv.Itoa(r.MinLength)); msg != "" {
			return msg
		}
	}
	if r.MaxLength > 0 {
		if msg := v.check(value, "max="+strconv.Itoa(r.MaxLength)); msg != "" {
			return msg
		}
	}
	if r.Pattern != "" {
		re, err := v.pattern(r.Pattern)
		if err != nil || !re.MatchString(value) {
			if r.PatternMessage != "" {
				return r.PatternMessage
			}
			return patternText
		}
	}
	if r.Custom != nil {
		return r.Custom(value, values)
	}
	return ""
}

func (v *Validator) check(value, tag string) string {
	err := v.validate.Var(value, tag)
	if err == nil {
		return ""
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return errs[0].Translate(v.translator)
	}
	return err.Error()
}

func (v *Validator) pattern(expr string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if re, ok := v.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	v.patterns[expr] = re
	return re, nil
}
