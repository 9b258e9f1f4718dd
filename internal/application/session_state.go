package application

import (
	"context"
	"time"

	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/pkg/helpers"
)

// SessionState is the per-request view of the signed-in user's plan. It is
// built when a session starts and dropped at sign-out.
type SessionState struct {
	Authenticated bool
	ClerkID       string
	SessionID     string
	Tier          entity.SubscriptionTier
	CreatedAt     *time.Time
	// Lookup records how Tier/CreatedAt were obtained.
	Lookup LookupStatus
}

type cachedSession struct {
	SessionID string     `json:"sid"`
	Tier      string     `json:"tier"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func sessionKey(clerkID string) string {
	return "user:session:" + clerkID
}

// StartSession returns the cached state for this session, loading and caching
// the profile on the first request of a new session. A missing profile yields
// the free tier with an unknown creation date and is not cached, so the state
// fills in once signup lands. Store failures also fall back to defaults.
func (s *ProfileService) StartSession(ctx context.Context, clerkID, sessionID string) SessionState {
	st := SessionState{Authenticated: true, ClerkID: clerkID, SessionID: sessionID, Tier: entity.TierFree}

	if s.Redis != nil {
		var cached cachedSession
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, sessionKey(clerkID), &cached)
		if err != nil {
			s.log().WithError(err).WithField("clerk_id", clerkID).Warn("session cache read failed")
		}
		if ok && cached.SessionID == sessionID {
			st.Tier = entity.SubscriptionTier(cached.Tier)
			st.CreatedAt = cached.CreatedAt
			st.Lookup = LookupFound
			return st
		}
	}

	res := s.Lookup(ctx, clerkID)
	st.Lookup = res.Status
	if res.Status != LookupFound {
		return st
	}
	st.Tier = res.Profile.SubscriptionTier
	created := res.Profile.CreatedAt
	st.CreatedAt = &created

	if s.Redis != nil {
		entry := cachedSession{SessionID: sessionID, Tier: string(st.Tier), CreatedAt: st.CreatedAt}
		if err := helpers.RedisSetJSON(ctx, s.Redis, sessionKey(clerkID), entry, s.SessionTTL); err != nil {
			s.log().WithError(err).WithField("clerk_id", clerkID).Warn("session cache write failed")
		}
	}
	return st
}

// EndSession tears down the cached state.
func (s *ProfileService) EndSession(ctx context.Context, clerkID string) {
	s.invalidateSession(ctx, clerkID)
}

func (s *ProfileService) invalidateSession(ctx context.Context, clerkID string) {
	if s.Redis == nil || clerkID == "" {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, sessionKey(clerkID)); err != nil {
		s.log().WithError(err).WithField("clerk_id", clerkID).Warn("session cache delete failed")
	}
}
