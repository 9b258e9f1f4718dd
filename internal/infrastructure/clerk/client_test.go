package clerk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/annex-account/internal/domain/identity"
)

const userJSON = `{
  "id": "user_1",
  "first_name": "Ada",
  "last_name": null,
  "primary_email_address_id": "idn_2",
  "created_at": 1700000000000,
  "email_addresses": [
    {"id": "idn_1", "email_address": "old@x.io", "verification": {"status": "unverified"}},
    {"id": "idn_2", "email_address": "ada@x.io", "verification": {"status": "verified"}}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL, "sk_test")
}

// backendPath drops the API version segment the SDK prefixes.
func backendPath(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, "/v1")
}

func TestGetUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/user_1", backendPath(r))
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, userJSON)
	})

	u, err := c.GetUser(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "", u.LastName)
	assert.Equal(t, "ada@x.io", u.PrimaryEmail())
	require.Len(t, u.EmailAddresses, 2)
	assert.False(t, u.EmailAddresses[0].Verified)
	assert.True(t, u.EmailAddresses[1].Verified)
	require.NotNil(t, u.CreatedAt)
	assert.Equal(t, int64(1700000000000), u.CreatedAt.UnixMilli())
}

func TestGetUser_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"code":"resource_not_found","message":"not found"}]}`)
	})

	_, err := c.GetUser(context.Background(), "missing")

	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestUpdatePassword_SurfacesProviderMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/user_1", backendPath(r))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hunter22hunter22", body["password"])
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"errors":[{"code":"form_password_pwned","message":"pwned","long_message":"Password has been found in an online data breach."}]}`)
	})

	err := c.UpdatePassword(context.Background(), "user_1", "hunter22hunter22")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Password has been found in an online data breach.", err.Error())
}

func TestSetPublicMetadata(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/user_1/metadata", backendPath(r))
		var body struct {
			PublicMetadata map[string]any `json:"public_metadata"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "profile-id", body.PublicMetadata["userId"])
		_, _ = io.WriteString(w, userJSON)
	})

	err := c.SetPublicMetadata(context.Background(), "user_1", map[string]any{"userId": "profile-id"})

	assert.NoError(t, err)
}

func TestCreateAndDeleteEmailAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/email_addresses", backendPath(r))
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user_1", body["user_id"])
			assert.Equal(t, "new@x.io", body["email_address"])
			_, _ = io.WriteString(w, `{"id":"idn_3","email_address":"new@x.io","verification":null}`)
		case http.MethodDelete:
			assert.Equal(t, "/email_addresses/idn_3", backendPath(r))
			_, _ = io.WriteString(w, `{"id":"idn_3","object":"email_address","deleted":true}`)
		}
	})

	e, err := c.CreateEmailAddress(context.Background(), "user_1", "new@x.io")
	require.NoError(t, err)
	assert.Equal(t, "idn_3", e.ID)
	assert.False(t, e.Verified)

	assert.NoError(t, c.DeleteEmailAddress(context.Background(), "idn_3"))
}

func TestSetPrimaryEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "idn_1", body["primary_email_address_id"])
		_, _ = io.WriteString(w, userJSON)
	})

	assert.NoError(t, c.SetPrimaryEmail(context.Background(), "user_1", "idn_1"))
}

func TestEmailVerification_RequiresSessionToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	err := c.PrepareEmailVerification(context.Background(), "idn_3")

	assert.ErrorIs(t, err, identity.ErrNoSessionToken)
}

func TestEmailVerification_Flow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "session-jwt", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v1/me/email_addresses/idn_3/prepare_verification":
			assert.Equal(t, "email_code", r.PostForm.Get("strategy"))
			_, _ = io.WriteString(w, `{"response":{"id":"idn_3"}}`)
		case "/v1/me/email_addresses/idn_3/attempt_verification":
			if r.PostForm.Get("code") != "424242" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, `{"errors":[{"code":"form_code_incorrect","message":"Incorrect code"}]}`)
				return
			}
			_, _ = io.WriteString(w, `{"response":{"id":"idn_3","email_address":"new@x.io","verification":{"status":"verified"}}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := identity.WithSessionToken(context.Background(), "session-jwt")

	require.NoError(t, c.PrepareEmailVerification(ctx, "idn_3"))

	_, err := c.AttemptEmailVerification(ctx, "idn_3", "000000")
	assert.ErrorIs(t, err, identity.ErrVerificationFailed)

	e, err := c.AttemptEmailVerification(ctx, "idn_3", "424242")
	require.NoError(t, err)
	assert.True(t, e.Verified)
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"user.created","object":"event","data":` + userJSON + `}`))
	require.NoError(t, err)
	assert.Equal(t, EventUserCreated, ev.Type)

	u, err := ev.User()
	require.NoError(t, err)
	assert.Equal(t, "user_1", u.ID)
	assert.Equal(t, "ada@x.io", u.ToEntity().PrimaryEmail())

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}
