package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/annex-account/config"
	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	repo "github.com/oksasatya/annex-account/internal/domain/repository"
	"github.com/oksasatya/annex-account/pkg/mailer"
)

// memProfiles is an in-memory ProfileRepository with the same uniqueness rules as the table.
type memProfiles struct {
	mu       sync.Mutex
	byClerk  map[string]*entity.Profile
	seq      int
	failWith error
	gets     int
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byClerk: map[string]*entity.Profile{}}
}

func (m *memProfiles) Create(ctx context.Context, p *entity.Profile) error {
	_, err := m.insert(p, false)
	return err
}

func (m *memProfiles) UpsertByClerkID(ctx context.Context, p *entity.Profile) (bool, error) {
	return m.insert(p, true)
}

func (m *memProfiles) insert(p *entity.Profile, upsert bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	if existing, ok := m.byClerk[p.ClerkID]; ok {
		if !upsert {
			return false, repo.ErrDuplicateClerkID
		}
		*p = *existing
		return false, nil
	}
	for _, other := range m.byClerk {
		if other.Email == p.Email {
			return false, repo.ErrDuplicateEmail
		}
	}
	m.seq++
	p.ID = "profile-" + string(rune('0'+m.seq))
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.byClerk[p.ClerkID] = &cp
	return true, nil
}

func (m *memProfiles) GetByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.byClerk[clerkID]
	if !ok {
		return nil, repo.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) UpdateSubscription(ctx context.Context, clerkID string, tier entity.SubscriptionTier, customerID string) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byClerk[clerkID]
	if !ok {
		return nil, repo.ErrProfileNotFound
	}
	p.SubscriptionTier = tier
	p.CustomerID = customerID
	cp := *p
	return &cp, nil
}

// fakeProvider records every call it receives.
type fakeProvider struct {
	users       map[string]*entity.IdentityUser
	calls       []string
	metadata    map[string]map[string]any
	metadataErr error
	prepareErr  error
	attemptErr  error
	updateErr   error
	nextEmailID string
}

func newFakeProvider(users ...*entity.IdentityUser) *fakeProvider {
	f := &fakeProvider{users: map[string]*entity.IdentityUser{}, metadata: map[string]map[string]any{}, nextEmailID: "idn_new"}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeProvider) GetUser(ctx context.Context, userID string) (*entity.IdentityUser, error) {
	f.calls = append(f.calls, "GetUser")
	u, ok := f.users[userID]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *u
	cp.EmailAddresses = append([]entity.EmailAddress(nil), u.EmailAddresses...)
	return &cp, nil
}

func (f *fakeProvider) UpdateName(ctx context.Context, userID, firstName, lastName string) (*entity.IdentityUser, error) {
	f.calls = append(f.calls, "UpdateName")
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, identity.ErrNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	return f.GetUser(ctx, userID)
}

func (f *fakeProvider) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	f.calls = append(f.calls, "UpdatePassword")
	return f.updateErr
}

func (f *fakeProvider) SetPublicMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	f.calls = append(f.calls, "SetPublicMetadata")
	if f.metadataErr != nil {
		return f.metadataErr
	}
	f.metadata[userID] = metadata
	return nil
}

func (f *fakeProvider) SetPrimaryEmail(ctx context.Context, userID, emailID string) error {
	f.calls = append(f.calls, "SetPrimaryEmail")
	if u, ok := f.users[userID]; ok {
		u.PrimaryEmailAddressID = emailID
	}
	return nil
}

func (f *fakeProvider) CreateEmailAddress(ctx context.Context, userID, address string) (entity.EmailAddress, error) {
	f.calls = append(f.calls, "CreateEmailAddress")
	e := entity.EmailAddress{ID: f.nextEmailID, EmailAddress: address}
	if u, ok := f.users[userID]; ok {
		u.EmailAddresses = append(u.EmailAddresses, e)
	}
	return e, nil
}

func (f *fakeProvider) DeleteEmailAddress(ctx context.Context, emailID string) error {
	f.calls = append(f.calls, "DeleteEmailAddress")
	for _, u := range f.users {
		out := u.EmailAddresses[:0]
		for _, e := range u.EmailAddresses {
			if e.ID != emailID {
				out = append(out, e)
			}
		}
		u.EmailAddresses = out
	}
	return nil
}

func (f *fakeProvider) PrepareEmailVerification(ctx context.Context, emailID string) error {
	f.calls = append(f.calls, "PrepareEmailVerification")
	return f.prepareErr
}

func (f *fakeProvider) AttemptEmailVerification(ctx context.Context, emailID, code string) (entity.EmailAddress, error) {
	f.calls = append(f.calls, "AttemptEmailVerification:"+code)
	if f.attemptErr != nil {
		return entity.EmailAddress{}, f.attemptErr
	}
	for _, u := range f.users {
		for i, e := range u.EmailAddresses {
			if e.ID == emailID {
				u.EmailAddresses[i].Verified = true
				return u.EmailAddresses[i], nil
			}
		}
	}
	return entity.EmailAddress{}, identity.ErrNotFound
}

type fakeMail struct {
	jobs []mailer.EmailJob
	err  error
}

func (f *fakeMail) PublishJSON(ctx context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body.(mailer.EmailJob))
	return nil
}

type fakeBlobs struct {
	objects map[string][]byte
}

func (f *fakeBlobs) Put(ctx context.Context, objectPath, contentType string, body []byte) error {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[objectPath] = body
	return nil
}

// fakeRedis implements the three commands the session cache uses.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	fail bool
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: map[string]string{}} }

var errRedisDown = errors.New("redis: connection refused")

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.fail {
		return redis.NewStringResult("", errRedisDown)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.fail {
		return redis.NewStatusResult("", errRedisDown)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func testConfig() *config.Config {
	return &config.Config{
		CompanyName:      "ANNEX",
		DashboardURL:     "http://localhost/account",
		MailSendEnabled:  true,
		BillingPortalURL: "https://billing.example.com/p/login/abc",
	}
}

func ts(s string) *time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return &t
}
