package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/product_catalog/internal/domain"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Normalizer is implemented by payloads that trim or fold their fields
// before the rules run.
type Normalizer interface {
	Normalize()
}

// Validator plugs go-playground/validator into echo and reports every
// failed rule as a domain.ValidationError.
type Validator struct {
	validator *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		return fl.Field().CanFloat() && IsFinite(fl.Field().Float())
	})
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		if !fl.Field().CanFloat() {
			return fl.Field().CanInt()
		}
		f := fl.Field().Float()
		return IsFinite(f) && f == math.Trunc(f)
	})

	return &Validator{validator: v}
}

// StrongPassword requires an uppercase letter, a lowercase letter and a digit.
func StrongPassword(s string) bool {
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func (cv *Validator) Validate(i interface{}) error {
	if n, ok := i.(Normalizer); ok {
		n.Normalize()
	}

	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return domain.NewValidationError("invalid input", fields...)
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or greater"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "username":
		return "may contain only letters, digits and underscores"
	case "password":
		return "must contain an uppercase letter, a lowercase letter and a digit"
	case "finite":
		return "must be a number"
	case "integer":
		return "must be an integer"
	case "gtefield", "ltefield":
		return "is out of range"
	default:
		return "failed " + fe.Tag() + " rule"
	}
}
