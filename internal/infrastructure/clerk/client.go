// Package clerk adapts Clerk to identity.Provider. Backend API calls go through
// clerk-sdk-go; the Frontend API verification calls are plain HTTP.
package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/emailaddress"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/oksasatya/annex-account/internal/domain/identity"
)

type ErrorDetail struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	LongMessage string `json:"long_message"`
}

// APIError is a Clerk error response from either API.
type APIError struct {
	Status int
	Errors []ErrorDetail `json:"errors"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("clerk: status %d", e.Status)
	}
	first := e.Errors[0]
	if first.LongMessage != "" {
		return first.LongMessage
	}
	return first.Message
}

func (e *APIError) hasCode(codes ...string) bool {
	for _, ae := range e.Errors {
		for _, c := range codes {
			if ae.Code == c {
				return true
			}
		}
	}
	return false
}

// classify maps not-found and rejected-code responses onto identity sentinels.
func (e *APIError) classify() error {
	if e.Status == http.StatusNotFound || e.hasCode("resource_not_found") {
		return fmt.Errorf("%w: %s", identity.ErrNotFound, e.Error())
	}
	if e.hasCode("form_code_incorrect", "verification_expired", "verification_failed") {
		return fmt.Errorf("%w: %s", identity.ErrVerificationFailed, e.Error())
	}
	return e
}

// fromSDK converts an SDK error response so callers see the provider's message.
func fromSDK(err error) error {
	if err == nil {
		return nil
	}
	var sdkErr *clerksdk.APIErrorResponse
	if !errors.As(err, &sdkErr) {
		return fmt.Errorf("clerk: %w", err)
	}
	apiErr := &APIError{Status: sdkErr.HTTPStatusCode}
	for _, e := range sdkErr.Errors {
		apiErr.Errors = append(apiErr.Errors, ErrorDetail{Code: e.Code, Message: e.Message, LongMessage: e.LongMessage})
	}
	return apiErr.classify()
}

type Client struct {
	users  *user.Client
	emails *emailaddress.Client

	FrontendURL string // Frontend API of the instance
	HTTP        *http.Client
}

// NewClient builds the Backend API clients for secretKey. An empty apiURL keeps
// the SDK default.
func NewClient(apiURL, frontendURL, secretKey string) *Client {
	httpClient := &http.Client{Timeout: 10 * time.Second}

	cfg := &clerksdk.ClientConfig{}
	cfg.Key = clerksdk.String(secretKey)
	cfg.HTTPClient = httpClient
	if apiURL != "" {
		cfg.URL = clerksdk.String(strings.TrimRight(apiURL, "/"))
	}

	return &Client{
		users:       user.NewClient(cfg),
		emails:      emailaddress.NewClient(cfg),
		FrontendURL: strings.TrimRight(frontendURL, "/"),
		HTTP:        httpClient,
	}
}

// frontend sends a form request on behalf of the signed-in user. The SDK only
// covers the Backend API, so these calls are made directly.
func (c *Client) frontend(ctx context.Context, path string, form url.Values, out any) error {
	tok, ok := identity.SessionTokenFrom(ctx)
	if !ok {
		return identity.ErrNoSessionToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.FrontendURL+path+"?_is_native=1", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", tok)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr.classify()
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("clerk: decode response: %w", err)
	}
	return nil
}
