// Package validx runs struct-tag validation and reports failures as
// *common.ValidationError keyed by JSON field name.
package validx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
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

// Struct validates s. It returns nil, a *common.ValidationError, or the
// validator's own error when s is not a struct.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := common.NewValidationError()
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve.Err()
}

// Var validates a single value against tag and records failures under field.
func Var(ve *common.ValidationError, field string, value any, tag string) {
	err := validate.Var(value, tag)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add(field, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.Add(field, message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
