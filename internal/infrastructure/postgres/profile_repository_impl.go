package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/repository"
)

const uniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, clerk_id, email, subscription_tier, customer_id, created_at, updated_at`

func scanProfile(row pgx.Row, p *entity.Profile) error {
	var tier string
	if err := row.Scan(&p.ID, &p.ClerkID, &p.Email, &tier, &p.CustomerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	p.SubscriptionTier = entity.SubscriptionTier(tier)
	return nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_profiles (clerk_id, email, subscription_tier, customer_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+profileColumns,
		p.ClerkID, p.Email, string(p.SubscriptionTier), p.CustomerID, p.CreatedAt)
	return mapError(scanProfile(row, p))
}

func (r *ProfileRepository) UpsertByClerkID(ctx context.Context, p *entity.Profile) (bool, error) {
	// A conflicting clerk_id returns no row; the email constraint still raises.
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_profiles (clerk_id, email, subscription_tier, customer_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (clerk_id) DO NOTHING
		RETURNING `+profileColumns,
		p.ClerkID, p.Email, string(p.SubscriptionTier), p.CustomerID, p.CreatedAt)

	err := scanProfile(row, p)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, mapError(err)
	}

	existing, err := r.GetByClerkID(ctx, p.ClerkID)
	if err != nil {
		return false, err
	}
	*p = *existing
	return false, nil
}

func (r *ProfileRepository) GetByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error) {
	p := &entity.Profile{}
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE clerk_id = $1`, clerkID)
	if err := scanProfile(row, p); err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *ProfileRepository) UpdateSubscription(ctx context.Context, clerkID string, tier entity.SubscriptionTier, customerID string) (*entity.Profile, error) {
	p := &entity.Profile{}
	row := r.db.QueryRow(ctx, `
		UPDATE user_profiles
		SET subscription_tier = $2, customer_id = $3
		WHERE clerk_id = $1
		RETURNING `+profileColumns,
		clerkID, string(tier), customerID)
	if err := scanProfile(row, p); err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrProfileNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "user_profiles_clerk_id_key":
			return repository.ErrDuplicateClerkID
		case "user_profiles_email_key":
			return repository.ErrDuplicateEmail
		}
	}
	return err
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
