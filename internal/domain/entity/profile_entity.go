package entity

import (
	"time"
)

// SubscriptionTier is the billing plan attached to a profile.
type SubscriptionTier string

const (
	TierFree  SubscriptionTier = "free"
	TierBasic SubscriptionTier = "basic"
)

func (t SubscriptionTier) Valid() bool {
	return t == TierFree || t == TierBasic
}

// Profile mirrors an identity-provider user into our store.
// ClerkID and Email are each unique; ClerkID never changes after creation.
type Profile struct {
	ID               string           `json:"_id"`
	ClerkID          string           `json:"clerkId"`
	Email            string           `json:"email"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`
	CustomerID       string           `json:"customerId"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NewProfile builds the record written on signup: free tier, no billing customer yet.
func NewProfile(clerkID, email string, createdAt time.Time) *Profile {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &Profile{
		ClerkID:          clerkID,
		Email:            email,
		SubscriptionTier: TierFree,
		CustomerID:       "",
		CreatedAt:        createdAt.UTC(),
	}
}
