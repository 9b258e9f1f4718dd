package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/annex-account/internal/container"
	handlers "github.com/oksasatya/annex-account/internal/interface/http"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
)

// WebhookModule receives provider deliveries. It is public; the signature
// is the only credential.
type WebhookModule struct {
	Handler *handlers.WebhookHandler
}

func NewWebhookModule(h *handlers.WebhookHandler) *WebhookModule {
	return &WebhookModule{Handler: h}
}

func (m *WebhookModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.POST("/webhooks/clerk", rl, m.Handler.Clerk)
}
