package entity

import "time"

// IdentityUser is the provider-side view of a user. It is never persisted here.
type IdentityUser struct {
	ID                    string
	FirstName             string
	LastName              string
	PrimaryEmailAddressID string
	EmailAddresses        []EmailAddress
	CreatedAt             *time.Time
}

type EmailAddress struct {
	ID           string
	EmailAddress string
	Verified     bool
}

// PrimaryEmail returns the address marked primary, falling back to the first one.
func (u *IdentityUser) PrimaryEmail() string {
	if u == nil {
		return ""
	}
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// FindEmail looks up one of the user's addresses by id.
func (u *IdentityUser) FindEmail(id string) (EmailAddress, bool) {
	for _, e := range u.EmailAddresses {
		if e.ID == id {
			return e, true
		}
	}
	return EmailAddress{}, false
}
