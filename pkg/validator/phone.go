package validator

import (
	"errors"
	"regexp"
	"strings"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits and an optional leading +")

	// ErrInvalidLength indicates phone number has too few or too many digits
	ErrInvalidLength = errors.New("phone number must have between 7 and 15 digits")
)

// phoneRegex matches an optional leading + followed by digits
var phoneRegex = regexp.MustCompile(`^\+?\d+$`)

// PhoneValidator handles phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a phone number and returns it sanitized.
// Accepts format: 0771234567, +94 77 123 4567, (077) 123-4567
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	digits := len(strings.TrimPrefix(sanitized, "+"))
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", ErrInvalidLength
	}

	return sanitized, nil
}

// Sanitize removes common separators from a phone number
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	return replacer.Replace(strings.TrimSpace(phone))
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
