// Package validation wraps go-playground/validator with the tags and
// messages used by request DTOs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("nationalid", func(fl validator.FieldLevel) bool {
		return domain.ValidNationalID(domain.NormalizeNationalID(fl.Field().String()))
	})
	_ = v.RegisterValidation("birthday", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseBirthday(fl.Field().String())
		return err == nil
	})
	return v
}

// jsonName reports fields by their JSON key so messages match the wire format.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Messenger is implemented by request types that supply user-facing messages.
// field is the JSON key of the failing field and tag the failing rule.
// An empty return falls back to the generic message.
type Messenger interface {
	ValidationMessage(field, tag string) string
}

// Validate checks req against its `validate` tags and returns a
// validation_failed domain error for the first failing field.
func Validate(req any) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		if m, ok := req.(Messenger); ok {
			fe := validationErrs[0]
			if msg := m.ValidationMessage(fe.Field(), fe.ActualTag()); msg != "" {
				return dErrors.New(dErrors.CodeValidation, msg)
			}
		}
	}
	return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
}

// ErrorMessage converts a validator error into a generic English message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	field := fe.Field()
	if field == "" {
		field = fe.StructField()
	}

	switch fe.ActualTag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "nationalid":
		return fmt.Sprintf("%s must be a valid national id", field)
	case "birthday":
		return fmt.Sprintf("%s must be exactly 7 digits", field)
	case "eq":
		return fmt.Sprintf("%s must equal %q", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
