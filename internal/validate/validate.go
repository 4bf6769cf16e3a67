// Package validate provides the pure field predicates shared by the user and
// product services. Each helper returns nil on success or a
// *domain.ValidationError describing the first broken rule; aggregate checks
// short-circuit on the first failure.
package validate

import (
	"regexp"
	"strings"

	"campus-market/internal/domain"
)

// Permissive local@domain.tld shape, not RFC 5322.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required fails when the value is empty after trimming.
func Required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field, message)
	}
	return nil
}

// MinLength fails when the value is shorter than min runes.
func MinLength(field, value string, min int, message string) error {
	if len([]rune(value)) < min {
		return domain.NewValidationError(field, message)
	}
	return nil
}

// MaxLength fails when the value is longer than max runes.
func MaxLength(field, value string, max int, message string) error {
	if len([]rune(value)) > max {
		return domain.NewValidationError(field, message)
	}
	return nil
}

// Email fails when the value is not shaped like local@domain.tld.
func Email(field, value string) error {
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return domain.NewValidationError(field, "Please enter a valid email address")
	}
	return nil
}

// PositiveNumber fails unless the value is strictly greater than zero.
func PositiveNumber(field string, value float64, message string) error {
	if !(value > 0) {
		return domain.NewValidationError(field, message)
	}
	return nil
}

// MaxNumber fails when the value exceeds the ceiling.
func MaxNumber(field string, value, ceiling float64, message string) error {
	if value > ceiling {
		return domain.NewValidationError(field, message)
	}
	return nil
}

// First returns the first non-nil error, implementing first-failure-wins
// aggregate validation.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
