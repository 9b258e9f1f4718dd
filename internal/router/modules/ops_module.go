package modules

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/annex-account/internal/container"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
	"github.com/oksasatya/annex-account/pkg/response"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// OpsModule serves GET /api/healthz and, when enabled, GET /api/debug/vars.
type OpsModule struct {
	Checks map[string]Check
	Expvar bool
}

func NewOpsModule(checks map[string]Check, expvar bool) *OpsModule {
	return &OpsModule{Checks: checks, Expvar: expvar}
}

func (m *OpsModule) Register(rg *gin.RouterGroup) {
	// in-cluster probes and scrapers skip the limiter
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/healthz", rl, m.health)
	if m.Expvar {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}

func (m *OpsModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(m.Checks))
	healthy := true
	for name, check := range m.Checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "degraded", status)
		return
	}
	response.Success(c, http.StatusOK, status, "ok", nil)
}
