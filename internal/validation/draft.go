package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Error is a user-facing validation failure, surfaced inline in the
// editor before any store call is made.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Struct validates a draft against its struct tags and flattens the
// first failure into a message fit for an inline editor error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return &Error{Message: fmt.Sprintf("%s is required", fieldName(fe))}
		case "max":
			if fe.Kind() == reflect.String {
				return &Error{Message: fmt.Sprintf("%s is too long (max %s characters)", fieldName(fe), fe.Param())}
			}
			return &Error{Message: fmt.Sprintf("%s must be at most %s", fieldName(fe), fe.Param())}
		case "min":
			return &Error{Message: fmt.Sprintf("%s must be at least %s", fieldName(fe), fe.Param())}
		case "oneof":
			return &Error{Message: fmt.Sprintf("%s must be one of: %s", fieldName(fe), strings.ReplaceAll(fe.Param(), " ", ", "))}
		default:
			return &Error{Message: fmt.Sprintf("%s is invalid", fieldName(fe))}
		}
	}

	return err
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}
