package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/config"
	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	repo "github.com/oksasatya/annex-account/internal/domain/repository"
	"github.com/oksasatya/annex-account/pkg/mailer"
	mailtpl "github.com/oksasatya/annex-account/pkg/mailer/templates"
)

var (
	ErrMissingEmail = errors.New("Email not provided.")
	ErrEmailTaken   = errors.New("Email already belongs to another account.")
	ErrStoreProfile = errors.New("failed to store user profile")
)

// SignupService mirrors provider users into the profile store.
type SignupService struct {
	Profiles *ProfileService
	Identity identity.Provider
	Mail     EmailPublisher
	Archive  BlobStore
	Cfg      *config.Config
	Logger   *logrus.Logger
	now      func() time.Time
}

func NewSignupService(profiles *ProfileService, idp identity.Provider, mail EmailPublisher, archive BlobStore, cfg *config.Config, logger *logrus.Logger) *SignupService {
	return &SignupService{Profiles: profiles, Identity: idp, Mail: mail, Archive: archive, Cfg: cfg, Logger: logger, now: time.Now}
}

type SignupResult struct {
	Profile *entity.Profile
	Created bool
}

// HandleUserCreated stores the profile for a newly created provider user.
// Redelivery of the same event is a success with Created=false. The profile id
// is written back to the provider's public metadata on every delivery; that
// write is best-effort and never undoes the stored profile.
func (s *SignupService) HandleUserCreated(ctx context.Context, u *entity.IdentityUser) (*SignupResult, error) {
	email := u.PrimaryEmail()
	if email == "" {
		return nil, ErrMissingEmail
	}
	createdAt := s.now()
	if u.CreatedAt != nil {
		createdAt = *u.CreatedAt
	}

	p := entity.NewProfile(u.ID, email, createdAt)
	created, err := s.Profiles.Register(ctx, p)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			s.Profiles.log().WithField("clerk_id", u.ID).Warn("signup email already registered")
			return nil, ErrEmailTaken
		}
		s.Profiles.log().WithError(err).WithField("clerk_id", u.ID).Error("store profile failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreProfile, err)
	}

	s.syncMetadata(ctx, u.ID, p.ID)
	if created {
		s.sendWelcome(ctx, p)
	}
	return &SignupResult{Profile: p, Created: created}, nil
}

func (s *SignupService) syncMetadata(ctx context.Context, clerkID, profileID string) {
	if s.Identity == nil {
		return
	}
	if err := s.Identity.SetPublicMetadata(ctx, clerkID, map[string]any{"userId": profileID}); err != nil {
		s.Profiles.log().WithError(err).WithField("clerk_id", clerkID).Warn("metadata write-back failed")
	}
}

func (s *SignupService) sendWelcome(ctx context.Context, p *entity.Profile) {
	if s.Mail == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       p.Email,
		Template: mailtpl.Universal,
		Data:     mailtpl.NewWelcomeData(s.Cfg, p.Email, string(p.SubscriptionTier), mailtpl.WithTime(p.CreatedAt)),
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Profiles.log().WithError(err).WithField("clerk_id", p.ClerkID).Warn("failed to publish welcome email")
	}
}

// ArchivePayload keeps the verified raw delivery for audit and replay.
func (s *SignupService) ArchivePayload(ctx context.Context, deliveryID string, body []byte) {
	if s.Archive == nil || deliveryID == "" {
		return
	}
	// the id comes from a request header; keep it to one path segment
	path := fmt.Sprintf("webhooks/%s/%s.json", s.now().UTC().Format("2006/01/02"), url.PathEscape(deliveryID))
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Archive.Put(c, path, "application/json", body); err != nil {
		s.Profiles.log().WithError(err).WithField("path", path).Warn("webhook archive failed")
	}
}
