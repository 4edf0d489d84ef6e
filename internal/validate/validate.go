// Package validate runs struct-tag schema checks on request bodies before
// they reach a service.
//
// Request DTOs declare their rules with `validate:"..."` tags:
//
//	type createTagRequest struct {
//	    Name  string `json:"name"  validate:"required,min=2"`
//	    Color string `json:"color" validate:"required,hexrgb"`
//	}
//
// Struct returns an *apperror.AppError wrapping ErrValidation whose Details
// name each failing field by its JSON name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/RebotePadel/GameHome/internal/apperror"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validator wraps a configured go-playground validator. It is safe for
// concurrent use and should be created once.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom rules registered.
func New() *Validator {
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

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates s and converts any failures into an apperror.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	details := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperror.FieldError{
			Field:   fieldPath(fe),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return apperror.Invalid(details)
}

// fieldPath drops the top-level struct name: "createTagRequest.color" → "color".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "hexrgb":
		return field + " must be a hex color like #RRGGBB"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
