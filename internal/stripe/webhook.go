// Package stripe ingests Stripe webhook events and turns them into relay
// notifications.
//
// The handler verifies the Stripe-Signature HMAC header, decodes the event
// payload and publishes a display-ready string. The relay core makes no
// assumption about event semantics beyond that string.
package stripe

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	apperrors "github.com/fortran01/notifyrelay/internal/errors"
	"github.com/fortran01/notifyrelay/internal/metrics"
)

// Stripe recommends capping webhook bodies well below this; 64 KiB is plenty
// for invoice and charge events.
const maxBodyBytes = 64 * 1024

// Publisher delivers one display-ready notification to all connected clients.
type Publisher interface {
	Publish(text string)
}

// WebhookHandler verifies and dispatches inbound Stripe events.
type WebhookHandler struct {
	secret    string
	publisher Publisher
}

// NewWebhookHandler creates a handler verifying signatures against secret.
func NewWebhookHandler(secret string, publisher Publisher) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		publisher: publisher,
	}
}

// HandleWebhook is the Echo handler for POST /api/webhook.
func (wh *WebhookHandler) HandleWebhook(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes)
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		return apperrors.ValidationError("failed to read webhook payload").WithContext("cause", err.Error())
	}

	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), wh.secret)
	if err != nil {
		slog.Error("Webhook signature verification failed", "error", err)
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		return apperrors.ValidationError("invalid webhook payload or signature")
	}

	switch event.Type {
	case stripe.EventTypeInvoicePaymentSucceeded:
		return wh.handlePaymentSucceeded(c, event)
	case stripe.EventTypeChargeRefunded:
		return wh.handleChargeRefunded(c, event)
	default:
		slog.Error("Unhandled webhook event type", "event_type", string(event.Type))
		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), "unhandled").Inc()
		return apperrors.ValidationError("unhandled event type").WithContext("event_type", string(event.Type))
	}
}

func (wh *WebhookHandler) handlePaymentSucceeded(c echo.Context, event stripe.Event) error {
	var invoice struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), "rejected").Inc()
		return apperrors.ValidationError("malformed invoice object")
	}

	slog.Info("Invoice payment succeeded", "invoice_id", invoice.ID)
	wh.publisher.Publish(fmt.Sprintf("Invoice %s payment succeeded", invoice.ID))
	metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), "published").Inc()

	return c.String(http.StatusOK, "Success")
}

func (wh *WebhookHandler) handleChargeRefunded(c echo.Context, event stripe.Event) error {
	var charge struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), "rejected").Inc()
		return apperrors.ValidationError("malformed charge object")
	}

	slog.Info("Refund processed", "charge_id", charge.ID)
	wh.publisher.Publish(fmt.Sprintf("Refund processed for %s", charge.ID))
	metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), "published").Inc()

	return c.String(http.StatusOK, "Success")
}
