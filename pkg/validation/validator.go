package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/mailmerge/pkg/mailer"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors, falling back to form tag names.
// - Registers the loosemail tag and alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the custom tags and naming to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	// loosemail accepts anything with an @ and a dot, the same check recipient tables get
	_ = v.RegisterValidation("loosemail", func(fl validator.FieldLevel) bool {
		return mailer.LooksLikeEmail(strings.TrimSpace(fl.Field().String()))
	})
	v.RegisterAlias("pwd", "min=8") // password minimum length
	v.RegisterAlias("bodyformat", "oneof=html text")
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.ActualTag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"
	case "email", "loosemail":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		if kind == reflect.String || kind == reflect.Slice {
			return fmt.Sprintf("must be at least %s characters long", param)
		}
		return "must be at least " + param
	case "max":
		if kind == reflect.String || kind == reflect.Slice {
			return fmt.Sprintf("must be at most %s characters long", param)
		}
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "uuid":
		return "must be a valid UUID"
	}
	if param != "" {
		return fmt.Sprintf("failed on the '%s=%s' rule", tag, param)
	}
	return fmt.Sprintf("failed on the '%s' rule", tag)
}
