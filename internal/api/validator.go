package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/domain"
)

// Validator wraps the validator instance with the coach's custom tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the "xpevent" and "profile" tags
// registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("xpevent", validateEventType)
	_ = v.RegisterValidation("profile", validateProfile)
	return &Validator{validate: v}
}

// ValidateStruct validates a struct using tags.
func (v *Validator) ValidateStruct(s any) error {
	return v.validate.Struct(s)
}

// ValidateVar validates a single value against tag.
func (v *Validator) ValidateVar(field any, tag string) error {
	return v.validate.Var(field, tag)
}

// FormatValidationError turns validation errors into per-field messages
// keyed by JSON field name.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "xpevent":
			errs[field] = fmt.Sprintf("Unknown event type %q", e.Value())
		case "profile":
			errs[field] = "Invalid profile name"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

func validateEventType(fl validator.FieldLevel) bool {
	return domain.XPEventType(fl.Field().String()).Valid()
}

func validateProfile(fl validator.FieldLevel) bool {
	return gamification.ValidProfile(fl.Field().String())
}
