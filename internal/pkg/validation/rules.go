// Package validation holds the custom request validation rules registered on
// the gin binding engine.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule tags
const (
	TagNotBlank = "notblank"
	TagCodeFmt  = "activationcode"
)

// Field limits shared by request DTOs
const (
	NameMaxLength     = 255
	UsernameMinLength = 3
	UsernameMaxLength = 100
)

// NotBlank fails for strings that are empty after trimming whitespace
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ActivationCode accepts PREFIX-SUFFIX codes made of letters and digits
func ActivationCode(fl validator.FieldLevel) bool {
	prefix, suffix, ok := strings.Cut(strings.TrimSpace(fl.Field().String()), "-")
	if !ok || prefix == "" || suffix == "" {
		return false
	}
	return isAlnum(prefix) && isAlnum(suffix)
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// Register adds the custom rules to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagNotBlank, NotBlank); err != nil {
		return err
	}
	return v.RegisterValidation(TagCodeFmt, ActivationCode)
}
