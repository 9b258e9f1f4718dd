package account

import (
	"errors"
	"unicode/utf8"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters long.")
	ErrPasswordMismatch = errors.New("Passwords do not match. Please try again.")
)

// ValidatePasswordChange must pass before the provider is asked to change anything.
// Length is counted in characters, matching the pwd validator alias.
func ValidatePasswordChange(newPassword, confirm string) error {
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
