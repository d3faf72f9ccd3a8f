package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json/form names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// FieldErrors maps a field name to the rule it failed.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, rule := range f {
		parts = append(parts, field+": "+rule)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// MissingRequired reports whether any field failed a required rule.
func (f FieldErrors) MissingRequired() bool {
	for _, rule := range f {
		if rule == "required" {
			return true
		}
	}
	return false
}

// Struct validates s and returns FieldErrors, or nil when s is valid.
func Struct(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
