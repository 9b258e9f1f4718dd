package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/annex-account/internal/container"
	handlers "github.com/oksasatya/annex-account/internal/interface/http"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
)

// ProfileModule serves the JSON account actions.
// Protected: POST /api/updateUser, GET /api/profile, GET /api/profiles/search
type ProfileModule struct {
	Handler  *handlers.ProfileHandler
	Verifier middleware.TokenVerifier
	Sessions middleware.SessionStarter
}

func NewProfileModule(h *handlers.ProfileHandler, v middleware.TokenVerifier, s middleware.SessionStarter) *ProfileModule {
	return &ProfileModule{Handler: h, Verifier: v, Sessions: s}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(
		middleware.APIAuth(m.Verifier),
		middleware.LoadSession(m.Sessions),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/updateUser", middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UpdateUser)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.GET("/profiles/search", m.Handler.Search)
	}
}
