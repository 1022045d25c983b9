package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"studyzone_backend/pkg/apperrors"
)

// ValidationError carries one message per invalid field, in struct order.
type ValidationError struct {
	Fields []apperrors.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field '%s': %s", f.Field, f.Message))
	}
	return "Validation failed: " + strings.Join(msgs, "; ")
}

// Validator wraps go-playground/validator with JSON field names and our custom rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomRules(v)

	return &Validator{validate: v}
}

// Validate checks i and returns *ValidationError when any field is invalid.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: getErrorMessage(fe),
		})
	}
	return &ValidationError{Fields: fields}
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_without":
		return fmt.Sprintf("Required when %s is empty", lowerFirst(fe.Param()))
	case "email":
		return "Must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max-bytes":
		return fmt.Sprintf("Must be at most %s bytes long", fe.Param())
	case "is-role":
		return "Must be one of: user, mentor, admin, support"
	default:
		return fmt.Sprintf("Invalid value (failed on '%s' tag)", fe.Tag())
	}
}

// required_without reports the Go field name; match the JSON casing.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
