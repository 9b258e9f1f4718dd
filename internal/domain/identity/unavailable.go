package identity

import (
	"context"
	"errors"

	"github.com/oksasatya/annex-account/internal/domain/entity"
)

// ErrUnavailable is returned by every call when no provider is configured. The
// message is shown to users as is.
var ErrUnavailable = errors.New("Account management is not available right now.")

// Unavailable stands in when the provider credentials are missing.
type Unavailable struct{}

func (Unavailable) GetUser(context.Context, string) (*entity.IdentityUser, error) {
	return nil, ErrUnavailable
}

func (Unavailable) UpdateName(context.Context, string, string, string) (*entity.IdentityUser, error) {
	return nil, ErrUnavailable
}

func (Unavailable) UpdatePassword(context.Context, string, string) error { return ErrUnavailable }

func (Unavailable) SetPublicMetadata(context.Context, string, map[string]any) error {
	return ErrUnavailable
}

func (Unavailable) SetPrimaryEmail(context.Context, string, string) error { return ErrUnavailable }

func (Unavailable) CreateEmailAddress(context.Context, string, string) (entity.EmailAddress, error) {
	return entity.EmailAddress{}, ErrUnavailable
}

func (Unavailable) DeleteEmailAddress(context.Context, string) error { return ErrUnavailable }

func (Unavailable) PrepareEmailVerification(context.Context, string) error { return ErrUnavailable }

func (Unavailable) AttemptEmailVerification(context.Context, string, string) (entity.EmailAddress, error) {
	return entity.EmailAddress{}, ErrUnavailable
}

var _ Provider = Unavailable{}
