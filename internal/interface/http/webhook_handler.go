package handlers

import (
	"errors"
	"expvar"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/infrastructure/clerk"
	"github.com/oksasatya/annex-account/internal/infrastructure/svix"
	"github.com/oksasatya/annex-account/pkg/response"
)

const maxWebhookBody = 1 << 20

// deliveries counts webhook outcomes; served on /api/debug/vars.
var deliveries = expvar.NewMap("webhook_deliveries")

// SignatureVerifier is satisfied by *svix.Verifier.
type SignatureVerifier interface {
	Verify(h svix.Headers, body []byte) error
}

type WebhookHandler struct {
	Verifier SignatureVerifier // nil when WEBHOOK_SECRET is missing or invalid
	Signup   *application.SignupService
	Logger   *logrus.Logger
}

func NewWebhookHandler(v SignatureVerifier, signup *application.SignupService, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{Verifier: v, Signup: signup, Logger: logger}
}

// Clerk POST /api/webhooks/clerk
func (h *WebhookHandler) Clerk(c *gin.Context) {
	if h.Verifier == nil {
		h.Logger.Error("webhook secret is not configured; rejecting delivery")
		response.Error[any](c, http.StatusInternalServerError, "Webhook secret not configured.", nil)
		return
	}

	hdr := svix.HeadersFrom(c.Request.Header)
	if !hdr.Complete() {
		deliveries.Add("rejected", 1)
		response.Error[any](c, http.StatusBadRequest, "Missing Svix headers.", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Could not read request body.", nil)
		return
	}
	if len(body) > maxWebhookBody {
		deliveries.Add("rejected", 1)
		response.Error[any](c, http.StatusRequestEntityTooLarge, "Payload too large.", nil)
		return
	}
	if err := h.Verifier.Verify(hdr, body); err != nil {
		h.Logger.WithError(err).WithField("svix_id", hdr.ID).Warn("webhook signature rejected")
		deliveries.Add("rejected", 1)
		response.Error[any](c, http.StatusBadRequest, "Invalid webhook signature.", nil)
		return
	}
	h.Signup.ArchivePayload(c.Request.Context(), hdr.ID, body)

	ev, err := clerk.ParseEvent(body)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid event payload.", nil)
		return
	}
	log := h.Logger.WithField("svix_id", hdr.ID).WithField("event", ev.Type)

	if ev.Type != clerk.EventUserCreated {
		deliveries.Add("ignored", 1)
		log.Debug("ignoring webhook event")
		response.Success[any](c, http.StatusOK, nil, "Unhandled event type.", nil)
		return
	}

	dto, err := ev.User()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid event payload.", nil)
		return
	}
	res, err := h.Signup.HandleUserCreated(c.Request.Context(), dto.ToEntity())
	switch {
	case errors.Is(err, application.ErrMissingEmail):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		return
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
		return
	case err != nil:
		deliveries.Add("failed", 1)
		log.WithError(err).Error("user.created handling failed")
		response.Error[any](c, http.StatusInternalServerError, "Error creating user.", nil)
		return
	}

	if res.Created {
		deliveries.Add("created", 1)
		log.WithField("clerk_id", res.Profile.ClerkID).Info("profile created")
		response.Success(c, http.StatusCreated, gin.H{"user": res.Profile}, "User created.", nil)
		return
	}
	deliveries.Add("duplicate", 1)
	log.WithField("clerk_id", res.Profile.ClerkID).Info("profile already present; redelivery acknowledged")
	response.Success(c, http.StatusOK, gin.H{"user": res.Profile}, "User already exists.", nil)
}
