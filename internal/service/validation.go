package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"aetherlink-be/internal/optional"
	"aetherlink-be/internal/result"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields under their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return lowerFirst(fld.Name)
		}
		return name
	})

	// optional fields validate any present value, empty strings included;
	// absent and null surface as a nil pointer and pass omitnil
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if s, ok := field.Interface().(optional.Field[string]); ok {
			return s.Ptr()
		}
		return (*string)(nil)
	}, optional.Field[string]{})

	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})

	return v
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if s == "UserID" {
		return "userId"
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// validateStruct runs the validator and folds failures into a VALIDATION_ERROR
// whose details.errors maps each field to its messages.
func validateStruct(message string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return result.Validation(message, map[string]any{"errors": map[string][]string{"_": {err.Error()}}})
	}

	errs := make(map[string][]string)
	for _, fe := range fieldErrs {
		field := fe.Field()
		errs[field] = append(errs[field], fieldMessage(fe))
	}
	return result.Validation(message, map[string]any{"errors": errs})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "url":
		return "Invalid url"
	case "uuid":
		return "Invalid uuid"
	case "handle":
		return "Handle can only contain letters, numbers, underscores, and hyphens"
	case "unique":
		return "Duplicate values are not allowed"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Array must contain at least %s element(s)", fe.Param())
		}
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
	default:
		return fmt.Sprintf("Failed on %s", fe.Tag())
	}
}
