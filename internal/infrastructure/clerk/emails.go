package clerk

import (
	"context"
	"net/url"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/emailaddress"

	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/identity"
)

func (c *Client) CreateEmailAddress(ctx context.Context, userID, address string) (entity.EmailAddress, error) {
	e, err := c.emails.Create(ctx, &emailaddress.CreateParams{
		UserID:       clerksdk.String(userID),
		EmailAddress: clerksdk.String(address),
		Verified:     clerksdk.Bool(false),
		Primary:      clerksdk.Bool(false),
	})
	if err != nil {
		return entity.EmailAddress{}, fromSDK(err)
	}
	return emailFromSDK(e), nil
}

func (c *Client) DeleteEmailAddress(ctx context.Context, emailID string) error {
	_, err := c.emails.Delete(ctx, emailID)
	return fromSDK(err)
}

// frontendEmail is the envelope the Frontend API wraps resources in.
type frontendEmail struct {
	Response emailDTO `json:"response"`
}

func (c *Client) PrepareEmailVerification(ctx context.Context, emailID string) error {
	form := url.Values{"strategy": {"email_code"}}
	return c.frontend(ctx, "/v1/me/email_addresses/"+url.PathEscape(emailID)+"/prepare_verification", form, nil)
}

func (c *Client) AttemptEmailVerification(ctx context.Context, emailID, code string) (entity.EmailAddress, error) {
	var out frontendEmail
	form := url.Values{"code": {code}}
	if err := c.frontend(ctx, "/v1/me/email_addresses/"+url.PathEscape(emailID)+"/attempt_verification", form, &out); err != nil {
		return entity.EmailAddress{}, err
	}
	e := out.Response.toEntity()
	if !e.Verified {
		return e, identity.ErrVerificationFailed
	}
	return e, nil
}
