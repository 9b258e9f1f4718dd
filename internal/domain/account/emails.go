package account

import (
	"errors"
	"sort"
	"strings"

	"github.com/oksasatya/annex-account/internal/domain/entity"
)

var ErrInvalidEmail = errors.New("Please enter a valid email address.")

// SortEmailsPrimaryFirst returns a copy of emails with the primary address first.
// Non-primary addresses compare equal, so their relative order is whatever the
// stable sort leaves.
func SortEmailsPrimaryFirst(emails []entity.EmailAddress, primaryID string) []entity.EmailAddress {
	out := make([]entity.EmailAddress, len(emails))
	copy(out, emails)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID == primaryID && out[j].ID != primaryID
	})
	return out
}

// ValidateEmailAddress only checks for an "@"; the provider does the real validation.
func ValidateEmailAddress(addr string) error {
	if !strings.Contains(addr, "@") {
		return ErrInvalidEmail
	}
	return nil
}
