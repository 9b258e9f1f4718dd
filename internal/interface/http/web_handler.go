package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/config"
	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/domain/account"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
	"github.com/oksasatya/annex-account/internal/interface/web"
	"github.com/oksasatya/annex-account/pkg/helpers"
	"github.com/oksasatya/annex-account/pkg/validation"
)

const pendingVerificationTTL = 10 * time.Minute

// WebHandler serves the dashboard pages and their form actions. Every action
// ends in a redirect with a flash toast; failures leave prior state untouched.
type WebHandler struct {
	Settings *application.SettingsService
	Profiles *application.ProfileService
	Cookies  *helpers.Manager
	Cfg      *config.Config
	Logger   *logrus.Logger
	now      func() time.Time
}

func NewWebHandler(settings *application.SettingsService, profiles *application.ProfileService, cfg *config.Config, logger *logrus.Logger) *WebHandler {
	return &WebHandler{
		Settings: settings,
		Profiles: profiles,
		Cookies:  helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		Cfg:      cfg,
		Logger:   logger,
		now:      time.Now,
	}
}

type nameForm struct {
	FirstName string `form:"first_name" binding:"personname"`
	LastName  string `form:"last_name" binding:"personname"`
}

type passwordForm struct {
	NewPassword     string `form:"new_password"`
	ConfirmPassword string `form:"confirm_password"`
}

type emailForm struct {
	Email string `form:"email" binding:"required"`
}

func (h *WebHandler) page(c *gin.Context, title string) web.Page {
	p := web.NewPage(title, c.Request.URL.Path, middleware.SessionStateFrom(c), nil)
	p.SignInURL = h.Cfg.SignInURL
	p.SignUpURL = h.Cfg.SignUpURL
	if f, ok := h.Cookies.PopFlash(c); ok {
		p.Flash = &f
	}
	return p
}

func (h *WebHandler) fail(c *gin.Context, to, msg string) {
	h.Cookies.SetFlash(c, helpers.FlashError, msg)
	c.Redirect(http.StatusSeeOther, to)
}

func (h *WebHandler) ok(c *gin.Context, to, msg string) {
	h.Cookies.SetFlash(c, helpers.FlashSuccess, msg)
	c.Redirect(http.StatusSeeOther, to)
}

// HomePage GET /
func (h *WebHandler) HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageHome, h.page(c, "Welcome"))
}

// AccountPage GET /account
func (h *WebHandler) AccountPage(c *gin.Context) {
	p := h.page(c, "Account")
	v, err := h.Settings.View(c.Request.Context(), p.Session, h.now())
	if err != nil {
		h.Logger.WithError(err).WithField("clerk_id", p.Session.ClerkID).Warn("load account failed")
		p.Flash = &helpers.Flash{Kind: helpers.FlashError, Message: "Could not load account information."}
		p.Membership = account.MembershipDuration(p.Session.CreatedAt, h.now())
		c.HTML(http.StatusOK, web.PageAccount, p)
		return
	}
	full := web.NewPage(p.Title, p.Path, p.Session, v.User)
	full.Flash, full.Membership = p.Flash, v.MembershipDuration
	c.HTML(http.StatusOK, web.PageAccount, full)
}

// SettingsPage GET /settings
func (h *WebHandler) SettingsPage(c *gin.Context) {
	p := h.page(c, "Settings")
	v, err := h.Settings.View(c.Request.Context(), p.Session, h.now())
	if err != nil {
		h.Logger.WithError(err).WithField("clerk_id", p.Session.ClerkID).Warn("load settings failed")
		h.fail(c, "/account", "Could not load your settings.")
		return
	}
	full := web.NewPage(p.Title, p.Path, p.Session, v.User)
	full.Flash, full.Settings = p.Flash, v

	if id := h.Cookies.PendingVerification(c); id != "" {
		if e, ok := v.User.FindEmail(id); ok && !e.Verified {
			full.Pending = &e
		} else {
			h.Cookies.ClearPendingVerification(c)
		}
	}
	c.HTML(http.StatusOK, web.PageSettings, full)
}

// UpdateName POST /settings/profile
func (h *WebHandler) UpdateName(c *gin.Context) {
	var f nameForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, "/settings", validation.FirstMessage(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if _, err := h.Settings.UpdateName(c.Request.Context(), uid, f.FirstName, f.LastName, requestMeta(c)); err != nil {
		h.Logger.WithError(err).WithField("clerk_id", uid).Warn("name update failed")
		h.fail(c, "/settings", err.Error())
		return
	}
	h.ok(c, "/settings", "Profile updated successfully.")
}

// ChangePassword POST /settings/password
func (h *WebHandler) ChangePassword(c *gin.Context) {
	var f passwordForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, "/settings", validation.FirstMessage(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Settings.ChangePassword(c.Request.Context(), uid, f.NewPassword, f.ConfirmPassword, requestMeta(c)); err != nil {
		h.fail(c, "/settings", err.Error())
		return
	}
	h.ok(c, "/settings", "Password updated successfully.")
}

// AddEmail POST /settings/emails
func (h *WebHandler) AddEmail(c *gin.Context) {
	var f emailForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, "/settings", account.ErrInvalidEmail.Error())
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	created, _, err := h.Settings.AddEmail(c.Request.Context(), uid, f.Email)
	if created.ID != "" {
		h.Cookies.SetPendingVerification(c, created.ID, h.now().Add(pendingVerificationTTL))
	}
	if err != nil {
		h.Logger.WithError(err).WithField("clerk_id", uid).Warn("add email failed")
		h.fail(c, "/settings", err.Error())
		return
	}
	h.ok(c, "/settings", "Verification code sent to "+created.EmailAddress+".")
}

// VerifyEmail POST /settings/emails/:id/verify
func (h *WebHandler) VerifyEmail(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	code := account.NewOTPInput(c.PostFormArray("code")...)
	if _, err := h.Settings.VerifyEmail(c.Request.Context(), uid, c.Param("id"), code); err != nil {
		if !errors.Is(err, application.ErrIncorrectCode) {
			h.Logger.WithError(err).WithField("clerk_id", uid).Warn("email verification failed")
		}
		h.fail(c, "/settings", err.Error())
		return
	}
	h.Cookies.ClearPendingVerification(c)
	h.ok(c, "/settings", "Email verified successfully.")
}

// DeleteEmail POST /settings/emails/:id/delete
func (h *WebHandler) DeleteEmail(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if _, err := h.Settings.DeleteEmail(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.fail(c, "/settings", err.Error())
		return
	}
	h.ok(c, "/settings", "Email address removed.")
}

// SetPrimaryEmail POST /settings/emails/:id/primary
func (h *WebHandler) SetPrimaryEmail(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if _, err := h.Settings.SetPrimaryEmail(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.fail(c, "/settings", err.Error())
		return
	}
	h.ok(c, "/settings", "Primary email updated.")
}

// Billing GET /settings/billing
func (h *WebHandler) Billing(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	target, err := h.Settings.BillingPortalURL(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("clerk_id", uid).Warn("billing portal unavailable")
		h.fail(c, "/settings", err.Error())
		return
	}
	c.Redirect(http.StatusFound, target)
}

// SignOut POST /sign-out
func (h *WebHandler) SignOut(c *gin.Context) {
	h.Profiles.EndSession(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	h.Cookies.ClearSession(c)
	c.Redirect(http.StatusSeeOther, h.Cfg.AfterSignOutURL)
}
