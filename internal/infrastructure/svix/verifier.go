// Package svix checks signed webhook deliveries (the Svix scheme Clerk uses)
// with the svix-webhooks library.
package svix

import (
	"errors"
	"fmt"
	"net/http"

	svixgo "github.com/svix/svix-webhooks/go"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

var (
	ErrMissingHeaders   = errors.New("svix: missing headers")
	ErrInvalidSignature = errors.New("svix: signature rejected")
	ErrInvalidSecret    = errors.New("svix: invalid secret")
)

// Headers are the three values a delivery must carry.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        h.Get(HeaderID),
		Timestamp: h.Get(HeaderTimestamp),
		Signature: h.Get(HeaderSignature),
	}
}

func (h Headers) Complete() bool {
	return h.ID != "" && h.Timestamp != "" && h.Signature != ""
}

func (h Headers) header() http.Header {
	out := http.Header{}
	out.Set(HeaderID, h.ID)
	out.Set(HeaderTimestamp, h.Timestamp)
	out.Set(HeaderSignature, h.Signature)
	return out
}

type Verifier struct {
	wh *svixgo.Webhook
}

// NewVerifier accepts a "whsec_<base64>" signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	wh, err := svixgo.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify rejects a delivery unless one of its signatures matches the body and
// its timestamp is within five minutes of now.
func (v *Verifier) Verify(h Headers, body []byte) error {
	if !h.Complete() {
		return ErrMissingHeaders
	}
	if err := v.wh.Verify(body, h.header()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
