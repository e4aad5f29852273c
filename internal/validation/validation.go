package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// symbolPattern accepts provider tickers such as "AAPL", "^GSPC", "BRK-B",
// "EURUSD=X" and "ASML.AS".
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.^=\-]{0,19}$`)

// MaxQueryLength bounds free-text search queries.
const MaxQueryLength = 100

// Common validation errors
var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrQueryTooLong  = fmt.Errorf("query must be %d characters or less", MaxQueryLength)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return IsSymbol(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// IsSymbol reports whether s looks like a provider ticker.
func IsSymbol(s string) bool {
	return symbolPattern.MatchString(strings.TrimSpace(s))
}

// ValidateSymbol checks a ticker taken from a path or query parameter.
func ValidateSymbol(symbol string) error {
	if !IsSymbol(symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

// ValidateSearchQuery checks a free-text search query. Empty is allowed.
func ValidateSearchQuery(q string) error {
	if len(q) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// ValidateStruct runs the struct tags of req and converts failures into an *Error.
func ValidateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = message(fe)
	}
	return &Error{Fields: fields}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "symbol":
		return fmt.Sprintf("%s must be a ticker symbol of 1 to 20 characters", field)
	case "max":
		return fmt.Sprintf("%s must be %s characters or less", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
