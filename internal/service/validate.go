package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/DukeRupert/parkchain/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateParams runs struct tag validation and converts failures into a
// domain.ValidationError keyed by field.
func validateParams(op string, params interface{}) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Internal(err, op, "Failed to validate parameters")
	}

	ve := &domain.ValidationError{Op: op, Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Fields[fe.Field()] = formatFieldError(fe)
	}
	return ve
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "excludesall":
		return fmt.Sprintf("%s must not contain a comma", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
