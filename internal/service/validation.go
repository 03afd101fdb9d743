package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

// phonePattern accepts an optional leading plus followed by 1 to 16 digits.
var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)

// NewValidator returns a validator configured for the API request structs:
// field names come from json tags and the custom phone rule is registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return phonePattern.MatchString(value)
	})
	return v
}

// validateStruct runs the validator and converts failures into a
// VALIDATION_ERROR listing every offending field, not just the first.
func validateStruct(v *validator.Validate, payload interface{}) *appErrors.Error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	details := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, appErrors.FieldError{Field: fe.Field(), Reason: reasonFor(fe)})
	}
	return appErrors.Validation(details)
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be an optional plus sign followed by up to 16 digits"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// mergeDetails folds extra field errors into an existing validation error,
// creating one when needed. Either argument may be empty.
func mergeDetails(base *appErrors.Error, extra []appErrors.FieldError) *appErrors.Error {
	if len(extra) == 0 {
		return base
	}
	if base == nil {
		return appErrors.Validation(extra)
	}
	base.Details = append(base.Details, extra...)
	return base
}
