// Package validation holds input validation rules shared by services and handlers.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLength keeps the demo accounts (password "password") valid.
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxEmailLength    = 254
	MaxNameLength     = 50
)

var phoneRegex = regexp.MustCompile(`^[0-9+][0-9-]{6,18}[0-9]$`)

// ValidateEmail checks length and address syntax. A display name is not allowed.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}
	if at := strings.LastIndex(email, "@"); !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the length policy.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateName requires a non-blank display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// ValidatePhone accepts an empty phone or digits with optional dashes, e.g. 010-1234-5678.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}

// ValidateText checks that a required free-text field is present and within max runes.
func ValidateText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}
