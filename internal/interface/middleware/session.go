package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	"github.com/oksasatya/annex-account/pkg/helpers"
	"github.com/oksasatya/annex-account/pkg/response"
)

const (
	CtxUserIDKey       = "userID"
	CtxSessionIDKey    = "sessionID"
	CtxSessionStateKey = "sessionState"
)

// TokenVerifier is satisfied by *helpers.SessionVerifier.
type TokenVerifier interface {
	Verify(token string) (*helpers.SessionClaims, error)
}

// SessionStarter is satisfied by *application.ProfileService.
type SessionStarter interface {
	StartSession(ctx context.Context, clerkID, sessionID string) application.SessionState
}

// sessionToken reads the provider token from the session cookie, then the
// Authorization header.
func sessionToken(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.SessionCookie); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// authenticate verifies the token and, on success, stores the subject, the
// session id and the raw token for calls made on the user's behalf.
func authenticate(c *gin.Context, v TokenVerifier) bool {
	tok := sessionToken(c)
	if tok == "" || v == nil {
		return false
	}
	claims, err := v.Verify(tok)
	if err != nil {
		return false
	}
	c.Set(CtxUserIDKey, claims.Subject)
	c.Set(CtxSessionIDKey, claims.SessionID)
	c.Request = c.Request.WithContext(identity.WithSessionToken(c.Request.Context(), tok))
	return true
}

// APIAuth answers 401 unless the request carries a valid provider session.
func APIAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionToken(c) == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing session token", nil)
			return
		}
		if !authenticate(c, v) {
			response.Error[any](c, http.StatusUnauthorized, "invalid session token", nil)
			return
		}
		c.Next()
	}
}

// PageAuth redirects to the sign-in page, carrying the requested path back.
func PageAuth(v TokenVerifier, signInURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, v) {
			target := signInURL + "?redirect_url=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the user when possible and never blocks.
func OptionalAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, v)
		c.Next()
	}
}

// LoadSession attaches the request-scoped SessionState. It must run after one
// of the auth middlewares; anonymous requests get an unauthenticated state.
func LoadSession(s SessionStarter) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		st := application.SessionState{}
		if uid != "" && s != nil {
			st = s.StartSession(c.Request.Context(), uid, c.GetString(CtxSessionIDKey))
		}
		c.Set(CtxSessionStateKey, st)
		c.Next()
	}
}

func SessionStateFrom(c *gin.Context) application.SessionState {
	if v, ok := c.Get(CtxSessionStateKey); ok {
		if st, ok := v.(application.SessionState); ok {
			return st
		}
	}
	return application.SessionState{}
}
