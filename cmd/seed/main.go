package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/config"
	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/domain/entity"
	pginfra "github.com/oksasatya/annex-account/internal/infrastructure/postgres"
	"github.com/oksasatya/annex-account/pkg/helpers"
)

// seed inserts a profile and optionally sets its plan, e.g. after a billing
// change made outside the app. A plain run fails if the profile exists; -upsert
// behaves like a webhook redelivery instead:
//
//	go run ./cmd/seed -clerk-id user_123 -email ada@x.io -tier basic -customer cus_42
func main() {
	clerkID := flag.String("clerk-id", "user_seed", "provider user id")
	email := flag.String("email", "demo@annex.local", "profile email")
	tier := flag.String("tier", "", "subscription tier to set after insert (free or basic)")
	customer := flag.String("customer", "", "billing customer id stored with -tier")
	upsert := flag.Bool("upsert", false, "keep an existing profile instead of failing")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable; profile will not be indexed")
		es = nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	svc := application.NewProfileService(pginfra.NewProfileRepository(pool), rdb, logger, es, cfg.ESProfilesIndex, cfg.SessionStateTTL)

	p := entity.NewProfile(*clerkID, *email, time.Now().UTC())
	created := true
	if *upsert {
		created, err = svc.Register(ctx, p)
	} else {
		err = svc.Create(ctx, p)
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed profile")
	}
	fields := logrus.Fields{"id": p.ID, "clerk_id": p.ClerkID, "email": p.Email, "created": created}
	helpers.LogInfo(logger, "profile seeded", fields)

	if *tier != "" {
		p, err = svc.SetSubscription(ctx, *clerkID, entity.SubscriptionTier(*tier), *customer)
		if err != nil {
			logger.WithError(err).Fatal("failed to update subscription")
		}
	}
	fmt.Printf("profile id=%s clerk_id=%s email=%s tier=%s customer=%s\n", p.ID, p.ClerkID, p.Email, p.SubscriptionTier, p.CustomerID)
}
