package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so errors match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// exp_month accepts a two-digit card expiry month, "01" through "12".
	_ = v.RegisterValidation("exp_month", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 2 {
			return false
		}
		m, err := strconv.Atoi(s)
		return err == nil && m >= 1 && m <= 12
	})

	return v
}

// Validate checks s against its validate struct tags. Tag failures come back
// as *ValidationError; anything else (e.g. a non-struct) is returned as is.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// ValidationError lists the fields of a request that failed validation.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", fe.Field(), message(fe)))
	}
	return strings.Join(msgs, "; ")
}

// Fields maps each failing JSON field name to a readable message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

// messages holds the text per tag; %s is replaced by the tag parameter.
var messages = map[string]string{
	"required":    "is required",
	"required_if": "is required for this payment method type",
	"min":         "must be at least %s characters",
	"max":         "must be at most %s characters",
	"len":         "must be exactly %s characters",
	"gt":          "must be greater than %s",
	"gte":         "must be greater than or equal to %s",
	"lte":         "must be less than or equal to %s",
	"ltefield":    "must not exceed %s",
	"oneof":       "must be one of: %s",
	"uuid":        "must be a valid UUID",
	"numeric":     "must contain only digits",
	"iso4217":     "must be an ISO 4217 currency code",
	"exp_month":   "must be a month between 01 and 12",
}

func message(fe validator.FieldError) string {
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	param := fe.Param()
	if fe.Tag() == "ltefield" {
		param = strings.ToLower(param)
	}
	return fmt.Sprintf(tmpl, param)
}
