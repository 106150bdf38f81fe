package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	barcodePattern   = regexp.MustCompile(`^[A-Za-z0-9\-]{4,64}$`)
	snakeCasePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Validator wraps validator/v10 with the project's custom tags. It reads the
// same `binding` tags gin validates on the server.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	Register(v)
	return &Validator{v: v}
}

// Register installs custom tags and json field naming on an existing engine, such as gin's.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("barcode", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || barcodePattern.MatchString(s)
	})
	_ = v.RegisterValidation("snakecase", func(fl validator.FieldLevel) bool {
		return snakeCasePattern.MatchString(fl.Field().String())
	})
}

// Validate checks a struct and flattens failures into readable messages.
func (v *Validator) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return &Errors{Fields: Messages(err)}
	}
	return nil
}

// Errors is returned by Validate.
type Errors struct {
	Fields []string
}

func (e *Errors) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Messages renders validator errors, passing other errors through as a single message.
func Messages(err error) []string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, fe.Param())
	case "barcode":
		return fmt.Sprintf("%s is not a valid barcode", field)
	case "snakecase":
		return fmt.Sprintf("%s must be snake_case", field)
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
