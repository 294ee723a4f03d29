package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Enum is implemented by closed string enumerations. Fields of such types
// are checked with the "enum" tag.
type Enum interface {
	Valid() bool
}

// Register adds the custom tags to v and reports fields by their JSON name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v.RegisterValidation("enum", validateEnum)
}

func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(Enum)
	return ok && e.Valid()
}

// Message renders a binding error as a single line for the client.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	}

	if errors.Is(err, io.EOF) {
		return "request body is required"
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s has the wrong type", typeErr.Field)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "request body is not valid JSON"
	}
	return err.Error()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "enum":
		return fmt.Sprintf("%s has invalid value %q", fe.Field(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
