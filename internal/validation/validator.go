// Package validation validates caller input with validator/v10 and converts
// failures into coded domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/util"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the content rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return util.IsSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		return domain.ContentType(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error
// carrying a field -> message map.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against a tag expression, reporting
// failures under field.
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return domainerrors.ValidationWithDetails("validation failed",
				map[string]string{field: friendlyMessage(validationErrs[0])})
		}
		return domainerrors.Validation(err.Error())
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domainerrors.Validation(err.Error())
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

// fieldPath drops the top-level struct name from the namespace so nested
// and slice fields read as "tags[2]".
func fieldPath(e validator.FieldError) string {
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	unit := "characters"
	switch e.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = "items"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		unit = ""
	}

	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if unit == "" {
			return "must be at least " + e.Param()
		}
		return fmt.Sprintf("must be at least %s %s", e.Param(), unit)
	case "max":
		if unit == "" {
			return "must not exceed " + e.Param()
		}
		return fmt.Sprintf("must not exceed %s %s", e.Param(), unit)
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "slug":
		return "must be lowercase letters, digits and single dashes"
	case "content_type":
		return "must be a known content type"
	case "hexcolor":
		return "must be a hex color like #ff3e00"
	case "printascii":
		return "must contain printable ASCII only"
	default:
		return "is invalid"
	}
}
