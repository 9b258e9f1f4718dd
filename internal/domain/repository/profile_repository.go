package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/annex-account/internal/domain/entity"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrDuplicateClerkID = errors.New("profile already exists for clerk id")
	ErrDuplicateEmail   = errors.New("email already belongs to another profile")
)

// ProfileRepository defines the storage operations for user profiles.
// There is intentionally no delete.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	// UpsertByClerkID inserts p unless a profile with the same clerk id exists,
	// in which case p is overwritten with the stored row and created is false.
	UpsertByClerkID(ctx context.Context, p *entity.Profile) (created bool, err error)
	GetByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error)
	UpdateSubscription(ctx context.Context, clerkID string, tier entity.SubscriptionTier, customerID string) (*entity.Profile, error)
}
