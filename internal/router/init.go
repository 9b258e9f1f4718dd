package router

import (
	"context"

	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/container"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	pginfra "github.com/oksasatya/annex-account/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/annex-account/internal/interface/http"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
	"github.com/oksasatya/annex-account/internal/router/modules"
	"github.com/oksasatya/annex-account/pkg/helpers"
)

type AccountDeps struct {
	Profiles *application.ProfileService
	Signup   *application.SignupService
	Settings *application.SettingsService
}

// Optional components come out of the container as typed pointers. They are
// converted here so an unset one reaches the services as a nil interface.

func identityProvider() identity.Provider {
	if c := container.GetClerk(); c != nil {
		return c
	}
	return nil
}

func emailPublisher() application.EmailPublisher {
	if p := container.GetRabbitPub(); p != nil {
		return p
	}
	return nil
}

func archive() application.BlobStore {
	cfg := container.GetConfig()
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		return helpers.NewGCSBucket(gcs, cfg.GCSBucket)
	}
	return nil
}

func sessionVerifier() middleware.TokenVerifier {
	if v := container.GetSessionVerifier(); v != nil {
		return v
	}
	return nil
}

func webhookVerifier() handlers.SignatureVerifier {
	if v := container.GetWebhookVerifier(); v != nil {
		return v
	}
	return nil
}

func healthChecks() map[string]modules.Check {
	checks := map[string]modules.Check{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

func buildAccountDeps() AccountDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := pginfra.NewProfileRepository(container.GetPGPool())

	profiles := application.NewProfileService(repo, container.GetRedis(), logger, container.GetES(), cfg.ESProfilesIndex, cfg.SessionStateTTL)
	idp := identityProvider()
	mail := emailPublisher()

	return AccountDeps{
		Profiles: profiles,
		Signup:   application.NewSignupService(profiles, idp, mail, archive(), cfg, logger),
		Settings: application.NewSettingsService(idp, profiles, mail, cfg, logger),
	}
}

// InitModules builds the account services from the container and registers
// every module. Call once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	deps := buildAccountDeps()
	verifier := sessionVerifier()

	r.Add(modules.NewWebhookModule(handlers.NewWebhookHandler(webhookVerifier(), deps.Signup, logger)))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(deps.Profiles, deps.Settings, logger), verifier, deps.Profiles))
	r.Add(modules.NewOpsModule(healthChecks(), cfg.DebugMetricsEnabled))

	web := handlers.NewWebHandler(deps.Settings, deps.Profiles, cfg, logger)
	r.AddWeb(modules.NewWebModule(web, verifier, deps.Profiles, cfg.SignInURL))
}
