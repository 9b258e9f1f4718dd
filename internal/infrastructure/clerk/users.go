package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/identity"
)

type emailDTO struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	Verification *struct {
		Status string `json:"status"`
	} `json:"verification"`
}

func (e emailDTO) toEntity() entity.EmailAddress {
	return entity.EmailAddress{
		ID:           e.ID,
		EmailAddress: e.EmailAddress,
		Verified:     e.Verification != nil && e.Verification.Status == "verified",
	}
}

// UserDTO is the user object carried by webhook payloads.
type UserDTO struct {
	ID                    string         `json:"id"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	EmailAddresses        []emailDTO     `json:"email_addresses"`
	CreatedAt             int64          `json:"created_at"` // unix millis
	PublicMetadata        map[string]any `json:"public_metadata"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func millis(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

func (u UserDTO) ToEntity() *entity.IdentityUser {
	out := &entity.IdentityUser{
		ID:                    u.ID,
		FirstName:             deref(u.FirstName),
		LastName:              deref(u.LastName),
		PrimaryEmailAddressID: deref(u.PrimaryEmailAddressID),
		CreatedAt:             millis(u.CreatedAt),
	}
	for _, e := range u.EmailAddresses {
		out.EmailAddresses = append(out.EmailAddresses, e.toEntity())
	}
	return out
}

func emailFromSDK(e *clerksdk.EmailAddress) entity.EmailAddress {
	if e == nil {
		return entity.EmailAddress{}
	}
	return entity.EmailAddress{
		ID:           e.ID,
		EmailAddress: e.EmailAddress,
		Verified:     e.Verification != nil && e.Verification.Status == "verified",
	}
}

func userFromSDK(u *clerksdk.User) *entity.IdentityUser {
	out := &entity.IdentityUser{
		ID:                    u.ID,
		FirstName:             deref(u.FirstName),
		LastName:              deref(u.LastName),
		PrimaryEmailAddressID: deref(u.PrimaryEmailAddressID),
		CreatedAt:             millis(u.CreatedAt),
	}
	for _, e := range u.EmailAddresses {
		out.EmailAddresses = append(out.EmailAddresses, emailFromSDK(e))
	}
	return out
}

func (c *Client) GetUser(ctx context.Context, userID string) (*entity.IdentityUser, error) {
	u, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, fromSDK(err)
	}
	return userFromSDK(u), nil
}

func (c *Client) UpdateName(ctx context.Context, userID, firstName, lastName string) (*entity.IdentityUser, error) {
	u, err := c.users.Update(ctx, userID, &user.UpdateParams{
		FirstName: clerksdk.String(firstName),
		LastName:  clerksdk.String(lastName),
	})
	if err != nil {
		return nil, fromSDK(err)
	}
	return userFromSDK(u), nil
}

func (c *Client) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	_, err := c.users.Update(ctx, userID, &user.UpdateParams{
		Password:               clerksdk.String(newPassword),
		SignOutOfOtherSessions: clerksdk.Bool(false),
	})
	return fromSDK(err)
}

func (c *Client) SetPrimaryEmail(ctx context.Context, userID, emailID string) error {
	_, err := c.users.Update(ctx, userID, &user.UpdateParams{
		PrimaryEmailAddressID: clerksdk.String(emailID),
	})
	return fromSDK(err)
}

// SetPublicMetadata merges metadata into the user's public metadata.
func (c *Client) SetPublicMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	b, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("clerk: encode metadata: %w", err)
	}
	raw := json.RawMessage(b)
	_, err = c.users.UpdateMetadata(ctx, userID, &user.UpdateMetadataParams{PublicMetadata: &raw})
	return fromSDK(err)
}

var _ identity.Provider = (*Client)(nil)
