// Package validation provides input validation for request payloads.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"workshophub/internal/models"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	global *validator.Validate

	// letters, digits and @ . + - _
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
)

func init() {
	global = New()
}

// New builds a validator with the application's custom rules registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", validateUsername)
	return v
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

// Struct validates s and returns the first failure as a VALIDATION_ERROR.
func Struct(ctx context.Context, s any) error {
	err := global.StructCtx(ctx, s)
	if err == nil {
		return nil
	}

	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(message(vErrors[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Enter a valid email address"
	case "username":
		return "Username may contain only letters, numbers, and @/./+/-/_ characters"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between %d and %d", field, models.MinRating, models.MaxRating)
	case "eqfield":
		return "Passwords don't match"
	case "uuid4", "uuid":
		return models.MsgResetTokenInvalid
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Password checks the minimum length rule shared by registration and password reset.
// Length is counted in characters, not bytes.
func Password(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return models.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	return nil
}

// Rating checks that r is within the accepted star range.
func Rating(r int) error {
	if !models.ValidRating(r) {
		return models.NewValidationError(fmt.Sprintf("Rating must be between %d and %d", models.MinRating, models.MaxRating))
	}
	return nil
}
