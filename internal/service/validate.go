// Package service holds the business rules behind every page and API endpoint.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"brgygo/pkg/types"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateForm runs struct tag validation and returns the collected field errors.
// The returned value is never nil so callers can keep adding rule specific errors.
func validateForm(v *validator.Validate, form any) *types.ValidationError {
	verr := types.NewValidationError()

	err := v.Struct(form)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("_form", "The form could not be validated.")
		return verr
	}

	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), messageFor(fe))
	}

	return verr
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "numeric":
		return "Must be a number."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "Invalid value."
}
