// Package validation checks request payloads against their `validate`
// struct tags and reports the first failure as a field keyed apperr.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}

		return name
	})

	return v
}

// Struct validates s. The returned error is an *apperr.Error of kind
// validation naming the offending JSON field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := fieldErrs[0]
	code, msg := describe(fe)

	return apperr.Validation(fe.Field(), code, msg)
}

func describe(fe validator.FieldError) (code, msg string) {
	switch fe.Tag() {
	case "required":
		return "required", "This field is required."
	case "min":
		return "min_length", fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return "max_length", fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gte":
		return "min_value", fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return "max_value", fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "email":
		return "invalid", "Enter a valid email address."
	default:
		return "invalid", fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
