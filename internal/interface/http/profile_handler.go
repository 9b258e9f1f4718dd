package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/domain/account"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
	"github.com/oksasatya/annex-account/pkg/response"
	"github.com/oksasatya/annex-account/pkg/validation"
)

type ProfileHandler struct {
	Profiles *application.ProfileService
	Settings *application.SettingsService
	Logger   *logrus.Logger
}

func NewProfileHandler(profiles *application.ProfileService, settings *application.SettingsService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Settings: settings, Logger: logger}
}

type updateUserRequest struct {
	ClerkID     string  `json:"clerkId" binding:"required,clerkid"`
	FirstName   *string `json:"firstName" binding:"omitempty,personname"`
	LastName    *string `json:"lastName" binding:"omitempty,personname"`
	NewPassword *string `json:"newPassword" binding:"omitempty,pwd"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// UpdateUser POST /api/updateUser
// A present newPassword makes this a password change; otherwise the names are updated.
func (h *ProfileHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if req.ClerkID != uid {
		response.Error[any](c, http.StatusForbidden, "clerkId does not match the signed-in user", nil)
		return
	}
	ctx := c.Request.Context()
	log := h.Logger.WithField("clerk_id", uid)

	if req.NewPassword != nil {
		if err := h.Settings.ChangePassword(ctx, uid, *req.NewPassword, *req.NewPassword, requestMeta(c)); err != nil {
			if errors.Is(err, account.ErrPasswordTooShort) {
				response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
				return
			}
			log.WithError(err).Warn("password update failed")
			response.Error[any](c, providerStatus(err), err.Error(), nil)
			return
		}
		response.Success[any](c, http.StatusOK, gin.H{"updated": "password"}, "Password updated successfully.", nil)
		return
	}

	if req.FirstName == nil && req.LastName == nil {
		response.Error[any](c, http.StatusBadRequest, "nothing to update", nil)
		return
	}
	u, err := h.Settings.UpdateName(ctx, uid, deref(req.FirstName), deref(req.LastName), requestMeta(c))
	if err != nil {
		if errors.Is(err, application.ErrNameRequired) {
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		log.WithError(err).Warn("name update failed")
		response.Error[any](c, providerStatus(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":        u.ID,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
	}, "Profile updated successfully.", nil)
}

// GetProfile GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	res := h.Profiles.Lookup(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	switch res.Status {
	case application.LookupFound:
		response.Success(c, http.StatusOK, res.Profile, "profile", nil)
	case application.LookupNotFound:
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
	default:
		response.Error[any](c, http.StatusServiceUnavailable, "profile store unavailable", nil)
	}
}

// Search GET /api/profiles/search?q=&size=
func (h *ProfileHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	out, err := h.Profiles.SearchProfiles(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("profile search failed")
		response.Error[any](c, http.StatusBadGateway, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, out, "results", map[string]any{"count": len(out)})
}

// providerStatus is 503 when no provider is configured and 502 otherwise.
func providerStatus(err error) int {
	if errors.Is(err, identity.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
