package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/config"
	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	repo "github.com/oksasatya/annex-account/internal/domain/repository"
	"github.com/oksasatya/annex-account/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() *config.Config {
	return &config.Config{
		SignInURL:        "/sign-in",
		SignUpURL:        "/sign-up",
		AfterSignOutURL:  "/",
		BillingPortalURL: "https://billing.example.com/p/login/abc",
		CookieDomain:     "localhost",
	}
}

type memRepo struct {
	rows     map[string]*entity.Profile
	failWith error
	writes   int
}

func newMemRepo() *memRepo { return &memRepo{rows: map[string]*entity.Profile{}} }

func (m *memRepo) Create(ctx context.Context, p *entity.Profile) error {
	_, err := m.UpsertByClerkID(ctx, p)
	return err
}

func (m *memRepo) UpsertByClerkID(ctx context.Context, p *entity.Profile) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	if cur, ok := m.rows[p.ClerkID]; ok {
		*p = *cur
		return false, nil
	}
	for _, r := range m.rows {
		if r.Email == p.Email {
			return false, repo.ErrDuplicateEmail
		}
	}
	m.writes++
	p.ID = "11111111-2222-4333-8444-55555555555" + string(rune('0'+len(m.rows)))
	cp := *p
	m.rows[p.ClerkID] = &cp
	return true, nil
}

func (m *memRepo) GetByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.rows[clerkID]
	if !ok {
		return nil, repo.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) UpdateSubscription(ctx context.Context, clerkID string, tier entity.SubscriptionTier, customerID string) (*entity.Profile, error) {
	p, ok := m.rows[clerkID]
	if !ok {
		return nil, repo.ErrProfileNotFound
	}
	p.SubscriptionTier, p.CustomerID = tier, customerID
	cp := *p
	return &cp, nil
}

// stubIdentity serves one user and records mutating calls.
type stubIdentity struct {
	user     *entity.IdentityUser
	err      error
	mutated  []string
	metadata map[string]any
}

func (s *stubIdentity) GetUser(ctx context.Context, userID string) (*entity.IdentityUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.ID != userID {
		return nil, identity.ErrNotFound
	}
	cp := *s.user
	return &cp, nil
}

func (s *stubIdentity) UpdateName(ctx context.Context, userID, firstName, lastName string) (*entity.IdentityUser, error) {
	s.mutated = append(s.mutated, "name")
	if s.err != nil {
		return nil, s.err
	}
	s.user.FirstName, s.user.LastName = firstName, lastName
	return s.GetUser(ctx, userID)
}

func (s *stubIdentity) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	s.mutated = append(s.mutated, "password")
	return s.err
}

func (s *stubIdentity) SetPublicMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	s.metadata = metadata
	return nil
}

func (s *stubIdentity) SetPrimaryEmail(ctx context.Context, userID, emailID string) error {
	s.mutated = append(s.mutated, "primary")
	s.user.PrimaryEmailAddressID = emailID
	return nil
}

func (s *stubIdentity) CreateEmailAddress(ctx context.Context, userID, address string) (entity.EmailAddress, error) {
	s.mutated = append(s.mutated, "create")
	e := entity.EmailAddress{ID: "idn_new", EmailAddress: address}
	s.user.EmailAddresses = append(s.user.EmailAddresses, e)
	return e, nil
}

func (s *stubIdentity) DeleteEmailAddress(ctx context.Context, emailID string) error {
	s.mutated = append(s.mutated, "delete")
	return nil
}

func (s *stubIdentity) PrepareEmailVerification(ctx context.Context, emailID string) error {
	s.mutated = append(s.mutated, "prepare")
	return nil
}

func (s *stubIdentity) AttemptEmailVerification(ctx context.Context, emailID, code string) (entity.EmailAddress, error) {
	s.mutated = append(s.mutated, "attempt:"+code)
	if code != "123456" {
		return entity.EmailAddress{}, identity.ErrVerificationFailed
	}
	return entity.EmailAddress{ID: emailID, Verified: true}, nil
}

func testUser() *entity.IdentityUser {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entity.IdentityUser{
		ID:                    "user_1",
		FirstName:             "Ada",
		LastName:              "Lovelace",
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses: []entity.EmailAddress{
			{ID: "idn_1", EmailAddress: "ada@x.io", Verified: true},
			{ID: "idn_2", EmailAddress: "pending@x.io"},
		},
		CreatedAt: &created,
	}
}

func newServices(r *memRepo, idp *stubIdentity) (*application.ProfileService, *application.SettingsService) {
	profiles := application.NewProfileService(r, nil, quietLogger(), nil, "", time.Hour)
	settings := application.NewSettingsService(idp, profiles, nil, testConfig(), quietLogger())
	return profiles, settings
}

// asUser stands in for the auth middleware.
func asUser(clerkID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", clerkID)
		c.Next()
	}
}
