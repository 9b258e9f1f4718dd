package helpers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie carries the provider session token on same-site requests.
	SessionCookie   = "__session"
	clientUATCookie = "__client_uat"

	flashCookie   = "flash"
	pendingCookie = "pending_email"
)

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// ClearSession drops the provider session cookies on sign-out.
func (m *Manager) ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(clientUATCookie, "", -1, "/", m.Domain, m.Secure, false)
	c.SetCookie(pendingCookie, "", -1, "/", m.Domain, m.Secure, true)
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

func (m *Manager) SetFlash(c *gin.Context, kind FlashKind, msg string) {
	b, _ := json.Marshal(Flash{Kind: kind, Message: msg})
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(b), 60, "/", m.Domain, m.Secure, true)
}

// PopFlash reads and clears the pending toast.
func (m *Manager) PopFlash(c *gin.Context) (Flash, bool) {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return Flash{}, false
	}
	c.SetCookie(flashCookie, "", -1, "/", m.Domain, m.Secure, true)
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Flash{}, false
	}
	var f Flash
	if err := json.Unmarshal(b, &f); err != nil || f.Message == "" {
		return Flash{}, false
	}
	return f, true
}

// SetPendingVerification remembers which email address awaits a one-time code.
func (m *Manager) SetPendingVerification(c *gin.Context, emailID string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(pendingCookie, emailID, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

func (m *Manager) PendingVerification(c *gin.Context) string {
	v, _ := c.Cookie(pendingCookie)
	return v
}

func (m *Manager) ClearPendingVerification(c *gin.Context) {
	c.SetCookie(pendingCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
