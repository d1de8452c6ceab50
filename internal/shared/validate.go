package shared

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// GSTINPattern is India's 15-character GST identifier structure.
var GSTINPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)

var nonDigit = regexp.MustCompile(`\D`)

// ValidGSTIN reports whether value matches the GSTIN structure.
func ValidGSTIN(value string) bool {
	return GSTINPattern.MatchString(value)
}

// NormalizePhone strips non-digit characters from a phone value.
func NormalizePhone(value string) string {
	return nonDigit.ReplaceAllString(value, "")
}

// ValidPhone reports whether value reduces to exactly 10 digits.
func ValidPhone(value string) bool {
	return len(NormalizePhone(value)) == 10
}

// NewValidator returns a validator with the partsdesk custom rules
// registered: `gstin` and `inphone`. Both treat the empty string as valid
// so the rules compose with `omitempty`.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || ValidGSTIN(s)
	})
	_ = v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return s == "" || ValidPhone(s)
	})
	return v
}
