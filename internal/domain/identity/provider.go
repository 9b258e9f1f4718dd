// Package identity describes what the account service needs from the external
// identity provider. Passwords, sessions and email ownership live there.
package identity

import (
	"context"
	"errors"

	"github.com/oksasatya/annex-account/internal/domain/entity"
)

var (
	ErrNotFound           = errors.New("identity: not found")
	ErrVerificationFailed = errors.New("identity: verification failed")
	ErrNoSessionToken     = errors.New("identity: no session token in context")
)

type Provider interface {
	GetUser(ctx context.Context, userID string) (*entity.IdentityUser, error)
	UpdateName(ctx context.Context, userID, firstName, lastName string) (*entity.IdentityUser, error)
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	SetPublicMetadata(ctx context.Context, userID string, metadata map[string]any) error
	SetPrimaryEmail(ctx context.Context, userID, emailID string) error

	CreateEmailAddress(ctx context.Context, userID, address string) (entity.EmailAddress, error)
	DeleteEmailAddress(ctx context.Context, emailID string) error
	// PrepareEmailVerification sends a one-time code to the address.
	PrepareEmailVerification(ctx context.Context, emailID string) error
	// AttemptEmailVerification returns ErrVerificationFailed when the code is rejected.
	AttemptEmailVerification(ctx context.Context, emailID, code string) (entity.EmailAddress, error)
}

type sessionTokenKey struct{}

// WithSessionToken stores the caller's raw session token for calls that act as the user.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

func SessionTokenFrom(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(sessionTokenKey{}).(string)
	return tok, ok && tok != ""
}
