package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/annex-account/internal/container"
	handlers "github.com/oksasatya/annex-account/internal/interface/http"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
)

// WebModule serves the dashboard pages and their form actions.
// Public: GET /
// Protected: /account, /settings and the /settings form posts, POST /sign-out
type WebModule struct {
	Handler   *handlers.WebHandler
	Verifier  middleware.TokenVerifier
	Sessions  middleware.SessionStarter
	SignInURL string
}

func NewWebModule(h *handlers.WebHandler, v middleware.TokenVerifier, s middleware.SessionStarter, signInURL string) *WebModule {
	return &WebModule{Handler: h, Verifier: v, Sessions: s, SignInURL: signInURL}
}

func (m *WebModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", middleware.OptionalAuth(m.Verifier), middleware.LoadSession(m.Sessions), m.Handler.HomePage)

	pages := rg.Group("/")
	pages.Use(
		middleware.PageAuth(m.Verifier, m.SignInURL),
		middleware.LoadSession(m.Sessions),
		// form posts only; page views are not limited
		middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), middleware.AllowSafeMethods()),
	)
	{
		pages.GET("/dashboard", func(c *gin.Context) { c.Redirect(http.StatusFound, "/account") })
		pages.GET("/account", m.Handler.AccountPage)
		pages.GET("/settings", m.Handler.SettingsPage)
		pages.GET("/settings/billing", m.Handler.Billing)

		pages.POST("/settings/profile", m.Handler.UpdateName)
		pages.POST("/settings/password", m.Handler.ChangePassword)
		pages.POST("/settings/emails", m.Handler.AddEmail)
		pages.POST("/settings/emails/:id/verify", m.Handler.VerifyEmail)
		pages.POST("/settings/emails/:id/delete", m.Handler.DeleteEmail)
		pages.POST("/settings/emails/:id/primary", m.Handler.SetPrimaryEmail)
		pages.POST("/sign-out", m.Handler.SignOut)
	}
}
