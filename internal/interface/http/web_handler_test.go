package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/internal/domain/identity"
	"github.com/oksasatya/annex-account/internal/interface/middleware"
	"github.com/oksasatya/annex-account/internal/interface/web"
	"github.com/oksasatya/annex-account/pkg/helpers"
)

var webNow = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func signedIn(c *gin.Context) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(middleware.CtxUserIDKey, "user_1")
	c.Set(middleware.CtxSessionStateKey, application.SessionState{
		Authenticated: true,
		ClerkID:       "user_1",
		SessionID:     "sess_1",
		Tier:          entity.TierBasic,
		CreatedAt:     &created,
	})
	c.Next()
}

func newWebRouter(r *memRepo, idp *stubIdentity) *gin.Engine {
	profiles, settings := newServices(r, idp)
	return webRoutes(profiles, settings)
}

func webRoutes(profiles *application.ProfileService, settings *application.SettingsService) *gin.Engine {
	h := NewWebHandler(settings, profiles, testConfig(), quietLogger())
	h.now = func() time.Time { return webNow }

	e := gin.New()
	e.HTMLRender = web.MustRenderer()
	e.GET("/", h.HomePage)
	g := e.Group("", signedIn)
	g.GET("/account", h.AccountPage)
	g.GET("/settings", h.SettingsPage)
	g.POST("/settings/profile", h.UpdateName)
	g.POST("/settings/password", h.ChangePassword)
	g.POST("/settings/emails", h.AddEmail)
	g.POST("/settings/emails/:id/verify", h.VerifyEmail)
	g.POST("/settings/emails/:id/delete", h.DeleteEmail)
	g.POST("/settings/emails/:id/primary", h.SetPrimaryEmail)
	g.GET("/settings/billing", h.Billing)
	g.POST("/sign-out", h.SignOut)
	return e
}

func serve(e *gin.Engine, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func flashOf(t *testing.T, w *httptest.ResponseRecorder) helpers.Flash {
	t.Helper()
	c := cookie(w, "flash")
	require.NotNil(t, c, "no flash cookie set")
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	require.NoError(t, err)
	var f helpers.Flash
	require.NoError(t, json.Unmarshal(b, &f))
	return f
}

func TestHomePage_SignedOut(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{})

	w := serve(e, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/sign-up"`)
	assert.Contains(t, w.Body.String(), `href="/sign-in"`)
}

func TestAccountPage(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{user: testUser()})

	w := serve(e, http.MethodGet, "/account", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "ada@x.io")
	assert.Contains(t, body, "2 months")
	assert.Contains(t, body, "Signed in as")
}

func TestAccountPage_ProviderDown(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{err: errors.New("503")})

	w := serve(e, http.MethodGet, "/account", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Could not load account information.")
}

func TestSettingsPage_ShowsPendingVerification(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{user: testUser()})

	w := serve(e, http.MethodGet, "/settings", nil, &http.Cookie{Name: "pending_email", Value: "idn_2"})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Verify pending@x.io")
	assert.Contains(t, body, `action="/settings/emails/idn_2/verify"`)
	assert.Equal(t, 6, strings.Count(body, `name="code"`))
}

func TestSettingsPage_DropsStalePending(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{user: testUser()})

	w := serve(e, http.MethodGet, "/settings", nil, &http.Cookie{Name: "pending_email", Value: "idn_1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `id="otp"`)
	c := cookie(w, "pending_email")
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func TestSettingsPage_LoadFailureRedirects(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{err: errors.New("503")})

	w := serve(e, http.MethodGet, "/settings", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/account", w.Header().Get("Location"))
	assert.Equal(t, helpers.FlashError, flashOf(t, w).Kind)
}

func TestSettingsPage_ShowsFlashOnce(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{user: testUser()})
	first := serve(e, http.MethodPost, "/settings/profile", url.Values{"first_name": {"Augusta"}})
	flash := cookie(first, "flash")
	require.NotNil(t, flash)

	w := serve(e, http.MethodGet, "/settings", nil, flash)

	assert.Contains(t, w.Body.String(), "Profile updated successfully.")
	c := cookie(w, "flash")
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func TestWebUpdateName(t *testing.T) {
	idp := &stubIdentity{user: testUser()}
	e := newWebRouter(newMemRepo(), idp)

	w := serve(e, http.MethodPost, "/settings/profile", url.Values{"first_name": {"Augusta"}, "last_name": {"King"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/settings", w.Header().Get("Location"))
	assert.Equal(t, helpers.Flash{Kind: helpers.FlashSuccess, Message: "Profile updated successfully."}, flashOf(t, w))
	assert.Equal(t, "Augusta", idp.user.FirstName)
}

func TestWebUpdateName_Blank(t *testing.T) {
	idp := &stubIdentity{user: testUser()}
	e := newWebRouter(newMemRepo(), idp)

	w := serve(e, http.MethodPost, "/settings/profile", url.Values{"first_name": {""}, "last_name": {"  "}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, application.ErrNameRequired.Error(), flashOf(t, w).Message)
	assert.Empty(t, idp.mutated)
}

func TestWebChangePassword(t *testing.T) {
	cases := []struct {
		name    string
		form    url.Values
		kind    helpers.FlashKind
		message string
		calls   []string
	}{
		{"mismatch", url.Values{"new_password": {"password123"}, "confirm_password": {"password124"}}, helpers.FlashError, "Passwords do not match. Please try again.", nil},
		{"too short", url.Values{"new_password": {"short"}, "confirm_password": {"short"}}, helpers.FlashError, "Password must be at least 8 characters long.", nil},
		{"ok", url.Values{"new_password": {"password123"}, "confirm_password": {"password123"}}, helpers.FlashSuccess, "Password updated successfully.", []string{"password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idp := &stubIdentity{user: testUser()}
			e := newWebRouter(newMemRepo(), idp)

			w := serve(e, http.MethodPost, "/settings/password", tc.form)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, helpers.Flash{Kind: tc.kind, Message: tc.message}, flashOf(t, w))
			assert.Equal(t, tc.calls, idp.mutated)
		})
	}
}

func TestWebAddEmail(t *testing.T) {
	idp := &stubIdentity{user: testUser()}
	e := newWebRouter(newMemRepo(), idp)

	w := serve(e, http.MethodPost, "/settings/emails", url.Values{"email": {"new@x.io"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Verification code sent to new@x.io.", flashOf(t, w).Message)
	assert.Equal(t, []string{"create", "prepare"}, idp.mutated)
	pending := cookie(w, "pending_email")
	require.NotNil(t, pending)
	assert.Equal(t, "idn_new", pending.Value)
}

func TestWebAddEmail_Invalid(t *testing.T) {
	idp := &stubIdentity{user: testUser()}
	e := newWebRouter(newMemRepo(), idp)

	w := serve(e, http.MethodPost, "/settings/emails", url.Values{"email": {"not-an-email"}})

	assert.Equal(t, "Please enter a valid email address.", flashOf(t, w).Message)
	assert.Empty(t, idp.mutated)
	assert.Nil(t, cookie(w, "pending_email"))
}

func TestWebVerifyEmail(t *testing.T) {
	digits := func(code string) url.Values {
		v := url.Values{}
		for _, r := range code {
			v.Add("code", string(r))
		}
		return v
	}

	t.Run("correct", func(t *testing.T) {
		idp := &stubIdentity{user: testUser()}
		e := newWebRouter(newMemRepo(), idp)

		w := serve(e, http.MethodPost, "/settings/emails/idn_2/verify", digits("123456"))

		assert.Equal(t, helpers.Flash{Kind: helpers.FlashSuccess, Message: "Email verified successfully."}, flashOf(t, w))
		assert.Equal(t, []string{"attempt:123456"}, idp.mutated)
		pending := cookie(w, "pending_email")
		require.NotNil(t, pending)
		assert.Equal(t, -1, pending.MaxAge)
	})

	t.Run("wrong", func(t *testing.T) {
		idp := &stubIdentity{user: testUser()}
		e := newWebRouter(newMemRepo(), idp)

		w := serve(e, http.MethodPost, "/settings/emails/idn_2/verify", digits("654321"))

		assert.Equal(t, helpers.Flash{Kind: helpers.FlashError, Message: "Incorrect verification code."}, flashOf(t, w))
		assert.Nil(t, cookie(w, "pending_email"))
	})

	t.Run("incomplete", func(t *testing.T) {
		idp := &stubIdentity{user: testUser()}
		e := newWebRouter(newMemRepo(), idp)

		w := serve(e, http.MethodPost, "/settings/emails/idn_2/verify", digits("123"))

		assert.Equal(t, "Incorrect verification code.", flashOf(t, w).Message)
		assert.Empty(t, idp.mutated)
	})
}

func TestWebDeleteAndPrimary(t *testing.T) {
	idp := &stubIdentity{user: testUser()}
	e := newWebRouter(newMemRepo(), idp)

	w := serve(e, http.MethodPost, "/settings/emails/idn_2/primary", url.Values{})
	assert.Equal(t, "Primary email updated.", flashOf(t, w).Message)
	assert.Equal(t, "idn_2", idp.user.PrimaryEmailAddressID)

	w = serve(e, http.MethodPost, "/settings/emails/idn_1/delete", url.Values{})
	assert.Equal(t, "Email address removed.", flashOf(t, w).Message)

	w = serve(e, http.MethodPost, "/settings/emails/idn_other/delete", url.Values{})
	assert.Equal(t, helpers.FlashError, flashOf(t, w).Kind)
	assert.Equal(t, []string{"primary", "delete"}, idp.mutated)
}

func TestWebBilling(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{user: testUser()})

	w := serve(e, http.MethodGet, "/settings/billing", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://billing.example.com/p/login/abc?prefilled_email=ada%40x.io", w.Header().Get("Location"))
}

func TestWebSignOut(t *testing.T) {
	e := newWebRouter(newMemRepo(), &stubIdentity{user: testUser()})

	w := serve(e, http.MethodPost, "/sign-out", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	session := cookie(w, helpers.SessionCookie)
	require.NotNil(t, session)
	assert.Equal(t, -1, session.MaxAge)
}

func TestWebChangePassword_UnreadableForm(t *testing.T) {
	idp := &stubIdentity{user: testUser()}
	e := newWebRouter(newMemRepo(), idp)
	req := httptest.NewRequest(http.MethodPost, "/settings/password", strings.NewReader("new_password=x"))
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, helpers.Flash{Kind: helpers.FlashError, Message: "invalid payload"}, flashOf(t, w))
	assert.Empty(t, idp.mutated)
}

func TestWebPages_NoProviderConfigured(t *testing.T) {
	profiles := application.NewProfileService(newMemRepo(), nil, quietLogger(), nil, "", time.Hour)
	settings := application.NewSettingsService(nil, profiles, nil, testConfig(), quietLogger())
	e := webRoutes(profiles, settings)

	account := serve(e, http.MethodGet, "/account", nil)
	require.Equal(t, http.StatusOK, account.Code)
	assert.Contains(t, account.Body.String(), "Could not load account information.")

	w := serve(e, http.MethodPost, "/settings/password", url.Values{"new_password": {"longenough1"}, "confirm_password": {"longenough1"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, helpers.Flash{Kind: helpers.FlashError, Message: identity.ErrUnavailable.Error()}, flashOf(t, w))
}
