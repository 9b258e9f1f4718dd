package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/config"
	"github.com/oksasatya/annex-account/internal/domain/account"
	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	"github.com/oksasatya/annex-account/pkg/mailer"
	mailtpl "github.com/oksasatya/annex-account/pkg/mailer/templates"
)

var (
	ErrNameRequired         = errors.New("First or last name is required.")
	ErrIncorrectCode        = errors.New("Incorrect verification code.")
	ErrEmailNotOwned        = errors.New("Email address not found on your account.")
	ErrBillingNotConfigured = errors.New("Billing portal is not available right now.")
	ErrNoEmailForBilling    = errors.New("Add an email address before opening billing.")
)

// SettingsService runs the account settings actions against the identity provider.
type SettingsService struct {
	Identity identity.Provider
	Profiles *ProfileService
	Mail     EmailPublisher
	Cfg      *config.Config
	Logger   *logrus.Logger
}

// NewSettingsService falls back to identity.Unavailable when idp is nil, so
// every action fails with identity.ErrUnavailable.
func NewSettingsService(idp identity.Provider, profiles *ProfileService, mail EmailPublisher, cfg *config.Config, logger *logrus.Logger) *SettingsService {
	if idp == nil {
		idp = identity.Unavailable{}
	}
	return &SettingsService{Identity: idp, Profiles: profiles, Mail: mail, Cfg: cfg, Logger: logger}
}

// RequestMeta is attached to notification emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// SettingsView is everything the settings and account pages render.
type SettingsView struct {
	User               *entity.IdentityUser
	Emails             []entity.EmailAddress
	PrimaryEmail       string
	Session            SessionState
	MembershipDuration string
}

func (s *SettingsService) View(ctx context.Context, st SessionState, now time.Time) (*SettingsView, error) {
	u, err := s.Identity.GetUser(ctx, st.ClerkID)
	if err != nil {
		return nil, err
	}
	createdAt := st.CreatedAt
	if createdAt == nil {
		createdAt = u.CreatedAt
	}
	return &SettingsView{
		User:               u,
		Emails:             account.SortEmailsPrimaryFirst(u.EmailAddresses, u.PrimaryEmailAddressID),
		PrimaryEmail:       u.PrimaryEmail(),
		Session:            st,
		MembershipDuration: account.MembershipDuration(createdAt, now),
	}, nil
}

func (s *SettingsService) UpdateName(ctx context.Context, clerkID, firstName, lastName string, meta RequestMeta) (*entity.IdentityUser, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return nil, ErrNameRequired
	}
	u, err := s.Identity.UpdateName(ctx, clerkID, firstName, lastName)
	if err != nil {
		return nil, err
	}
	changes := map[string]string{"First name": u.FirstName, "Last name": u.LastName}
	s.notify(ctx, u, func(name, email string) map[string]any {
		return mailtpl.NewProfileUpdatedData(s.Cfg, name, email, changes, s.metaOpts(meta)...)
	})
	return u, nil
}

// ChangePassword validates locally before the provider is contacted.
func (s *SettingsService) ChangePassword(ctx context.Context, clerkID, newPassword, confirm string, meta RequestMeta) error {
	if err := account.ValidatePasswordChange(newPassword, confirm); err != nil {
		return err
	}
	if err := s.Identity.UpdatePassword(ctx, clerkID, newPassword); err != nil {
		return err
	}
	if u, err := s.Identity.GetUser(ctx, clerkID); err == nil {
		s.notify(ctx, u, func(name, email string) map[string]any {
			return mailtpl.NewPasswordChangedData(s.Cfg, name, email, s.metaOpts(meta)...)
		})
	}
	return nil
}

// AddEmail creates the address, reloads the user and issues a verification
// code. The created address is returned even if issuing the code failed so the
// caller can still offer verification.
func (s *SettingsService) AddEmail(ctx context.Context, clerkID, address string) (entity.EmailAddress, *entity.IdentityUser, error) {
	address = strings.TrimSpace(address)
	if err := account.ValidateEmailAddress(address); err != nil {
		return entity.EmailAddress{}, nil, err
	}
	created, err := s.Identity.CreateEmailAddress(ctx, clerkID, address)
	if err != nil {
		return entity.EmailAddress{}, nil, err
	}
	u, err := s.Identity.GetUser(ctx, clerkID)
	if err != nil {
		return created, nil, err
	}
	if err := s.Identity.PrepareEmailVerification(ctx, created.ID); err != nil {
		return created, u, err
	}
	return created, u, nil
}

func (s *SettingsService) VerifyEmail(ctx context.Context, clerkID, emailID string, code *account.OTPInput) (*entity.IdentityUser, error) {
	if !code.Complete() {
		return nil, ErrIncorrectCode
	}
	if _, err := s.owned(ctx, clerkID, emailID); err != nil {
		return nil, err
	}
	verified, err := s.Identity.AttemptEmailVerification(ctx, emailID, code.Code())
	if err != nil {
		if errors.Is(err, identity.ErrVerificationFailed) {
			return nil, ErrIncorrectCode
		}
		return nil, err
	}
	u, err := s.Identity.GetUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, u, func(name, email string) map[string]any {
		return mailtpl.NewEmailAddedData(s.Cfg, name, email, verified.EmailAddress)
	})
	return u, nil
}

func (s *SettingsService) DeleteEmail(ctx context.Context, clerkID, emailID string) (*entity.IdentityUser, error) {
	if _, err := s.owned(ctx, clerkID, emailID); err != nil {
		return nil, err
	}
	if err := s.Identity.DeleteEmailAddress(ctx, emailID); err != nil {
		return nil, err
	}
	return s.Identity.GetUser(ctx, clerkID)
}

func (s *SettingsService) SetPrimaryEmail(ctx context.Context, clerkID, emailID string) (*entity.IdentityUser, error) {
	if _, err := s.owned(ctx, clerkID, emailID); err != nil {
		return nil, err
	}
	if err := s.Identity.SetPrimaryEmail(ctx, clerkID, emailID); err != nil {
		return nil, err
	}
	return s.Identity.GetUser(ctx, clerkID)
}

// BillingPortalURL points at the hosted portal with the account's first email prefilled.
func (s *SettingsService) BillingPortalURL(ctx context.Context, clerkID string) (string, error) {
	if s.Cfg == nil || s.Cfg.BillingPortalURL == "" {
		return "", ErrBillingNotConfigured
	}
	u, err := s.Identity.GetUser(ctx, clerkID)
	if err != nil {
		return "", err
	}
	if len(u.EmailAddresses) == 0 {
		return "", ErrNoEmailForBilling
	}
	return s.Cfg.BillingPortalURL + "?prefilled_email=" + url.QueryEscape(u.EmailAddresses[0].EmailAddress), nil
}

func (s *SettingsService) owned(ctx context.Context, clerkID, emailID string) (*entity.IdentityUser, error) {
	u, err := s.Identity.GetUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if _, ok := u.FindEmail(emailID); !ok {
		return nil, ErrEmailNotOwned
	}
	return u, nil
}

func (s *SettingsService) metaOpts(meta RequestMeta) []mailtpl.Option {
	return []mailtpl.Option{
		mailtpl.WithIP(meta.IP),
		mailtpl.WithUserAgent(meta.UserAgent),
		mailtpl.WithTime(time.Now()),
	}
}

// notify publishes a notification to the user's primary address; failures are logged only.
func (s *SettingsService) notify(ctx context.Context, u *entity.IdentityUser, build func(name, email string) map[string]any) {
	if s.Mail == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	to := u.PrimaryEmail()
	if to == "" {
		return
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	job := mailer.EmailJob{To: to, Template: mailtpl.Universal, Data: build(name, to)}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("clerk_id", u.ID).Warn("failed to publish notification email")
	}
}
