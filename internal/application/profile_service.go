package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/internal/domain/entity"
	repo "github.com/oksasatya/annex-account/internal/domain/repository"
)

var (
	ErrCreateProfile = errors.New("failed to create user profile")
	ErrInvalidTier   = errors.New("invalid subscription tier")
)

// LookupStatus distinguishes a missing profile from a store failure.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	default:
		return "error"
	}
}

type LookupResult struct {
	Status  LookupStatus
	Profile *entity.Profile
	Err     error
}

type ProfileService struct {
	Repo       repo.ProfileRepository
	Redis      redis.Cmdable
	Logger     *logrus.Logger
	ES         *elasticsearch.Client
	ESIndex    string
	SessionTTL time.Duration
}

func NewProfileService(r repo.ProfileRepository, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, sessionTTL time.Duration) *ProfileService {
	s := &ProfileService{Repo: r, Logger: logger, ES: es, ESIndex: esIndex, SessionTTL: sessionTTL}
	if rdb != nil {
		s.Redis = rdb
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 24 * time.Hour
	}
	return s
}

func (s *ProfileService) log() logrus.FieldLogger {
	if s.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return s.Logger
}

// Create inserts a profile. Callers only ever see ErrCreateProfile; the cause is logged.
func (s *ProfileService) Create(ctx context.Context, p *entity.Profile) error {
	if err := s.Repo.Create(ctx, p); err != nil {
		s.log().WithError(err).WithField("clerk_id", p.ClerkID).Error("create profile failed")
		return ErrCreateProfile
	}
	s.indexProfile(ctx, p)
	return nil
}

// Lookup never collapses "missing" and "store unavailable" into the same answer.
func (s *ProfileService) Lookup(ctx context.Context, clerkID string) LookupResult {
	p, err := s.Repo.GetByClerkID(ctx, clerkID)
	switch {
	case err == nil:
		return LookupResult{Status: LookupFound, Profile: p}
	case errors.Is(err, repo.ErrProfileNotFound):
		return LookupResult{Status: LookupNotFound}
	default:
		s.log().WithError(err).WithField("clerk_id", clerkID).Warn("profile lookup failed")
		return LookupResult{Status: LookupFailed, Err: err}
	}
}

// Register upserts by clerk id. created is false when the profile already existed,
// in which case p holds the stored row.
func (s *ProfileService) Register(ctx context.Context, p *entity.Profile) (bool, error) {
	created, err := s.Repo.UpsertByClerkID(ctx, p)
	if err != nil {
		return false, err
	}
	if created {
		s.indexProfile(ctx, p)
		s.invalidateSession(ctx, p.ClerkID)
	}
	return created, nil
}

func (s *ProfileService) SetSubscription(ctx context.Context, clerkID string, tier entity.SubscriptionTier, customerID string) (*entity.Profile, error) {
	if !tier.Valid() {
		return nil, ErrInvalidTier
	}
	p, err := s.Repo.UpdateSubscription(ctx, clerkID, tier, customerID)
	if err != nil {
		return nil, err
	}
	s.invalidateSession(ctx, clerkID)
	s.indexProfile(ctx, p)
	return p, nil
}

func (s *ProfileService) indexProfile(ctx context.Context, p *entity.Profile) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":                p.ID,
		"clerk_id":          p.ClerkID,
		"email":             p.Email,
		"subscription_tier": string(p.SubscriptionTier),
		"customer_id":       p.CustomerID,
		"created_at":        p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":        p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ClerkID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.log().WithError(err).WithField("clerk_id", p.ClerkID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.log().WithField("status", res.Status()).WithField("clerk_id", p.ClerkID).Warn("es index response error")
	}
}

// SearchProfiles runs a multi_match over email and clerk id.
func (s *ProfileService) SearchProfiles(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "clerk_id"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("search failed: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
