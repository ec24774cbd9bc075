// Package alias normalizes lookup identifiers and validates create requests.
package alias

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyInput is returned when the trimmed alias is empty.
	ErrEmptyInput = errors.New("alias is empty")
	// ErrEmptyURL is returned when a create request has no target URL.
	ErrEmptyURL = errors.New("url is empty")
	// ErrURLScheme is returned when the target URL is not http or https.
	ErrURLScheme = errors.New("url must start with http:// or https://")
	// ErrInvalidCustomAlias is returned when a custom alias breaks the charset policy.
	ErrInvalidCustomAlias = errors.New("custom alias must be 3-20 letters or digits")
)

var (
	validate     *validator.Validate
	customFormat = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
)

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("shortalias", validateShortAlias); err != nil {
		panic(fmt.Sprintf("failed to register shortalias validation: %v", err))
	}
	if err := validate.RegisterValidation("httpurl", validateHTTPURL); err != nil {
		panic(fmt.Sprintf("failed to register httpurl validation: %v", err))
	}
}

// Normalize strips surrounding whitespace from a lookup alias. Reads do not
// enforce the create-time charset.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	return trimmed, nil
}

// ValidateCreate checks a create request before it is sent. An empty custom
// alias means the backend picks one.
func ValidateCreate(url, custom string) error {
	if err := validate.Var(url, "required"); err != nil {
		return ErrEmptyURL
	}
	if err := validate.Var(url, "httpurl"); err != nil {
		return ErrURLScheme
	}
	if err := validate.Var(custom, "omitempty,shortalias"); err != nil {
		return ErrInvalidCustomAlias
	}
	return nil
}

func validateShortAlias(fl validator.FieldLevel) bool {
	return customFormat.MatchString(fl.Field().String())
}

func validateHTTPURL(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}
