package operation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pitabwire/pscale/model"
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

// validateStruct validates v if it is a struct or a pointer to one.
func validateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(v)
}

// toValidationError converts validator output for the input of type root
// to the client's error type. Errors of any other kind are returned as the
// sole detail.
func toValidationError(op string, root reflect.Type, err error) *model.ValidationError {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return &model.ValidationError{
			Operation: op,
			Details:   []model.FieldError{{Code: "invalid", Message: err.Error()}},
		}
	}
	details := make([]model.FieldError, 0, len(valErrs))
	for _, ve := range valErrs {
		details = append(details, model.FieldError{
			Field:   fieldPath(root, ve),
			Code:    ve.Tag(),
			Message: formatValidationError(ve),
		})
	}
	return &model.ValidationError{Operation: op, Details: details}
}

// fieldPath renders the json path of a failing field. The root struct name
// and embedded struct names are dropped, so a field promoted from an
// embedded model.PageParams reports as "page".
func fieldPath(root reflect.Type, ve validator.FieldError) string {
	names := strings.Split(ve.Namespace(), ".")
	goNames := strings.Split(ve.StructNamespace(), ".")
	if len(names) != len(goNames) || len(names) < 2 {
		return ve.Field()
	}

	t := root
	out := make([]string, 0, len(names)-1)
	for i := 1; i < len(goNames); i++ {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		goName, _, _ := strings.Cut(goNames[i], "[")
		var (
			f  reflect.StructField
			ok bool
		)
		if t != nil && t.Kind() == reflect.Struct {
			f, ok = t.FieldByName(goName)
		}
		if ok && f.Anonymous {
			t = f.Type
			continue
		}
		out = append(out, names[i])
		if !ok {
			t = nil
			continue
		}
		t = f.Type
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			t = t.Elem()
		}
	}
	return strings.Join(out, ".")
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		if ve.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", ve.Param())
		}
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		if ve.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", ve.Param())
		}
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "url":
		return "must be a valid URL"
	case "hostname_rfc1123":
		return "must be a valid name"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
