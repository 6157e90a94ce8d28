package stripe

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	apperrors "github.com/fortran01/notifyrelay/internal/errors"
)

const testSecret = "whsec_test_secret_0123456789"

type capturingPublisher struct {
	mu    sync.Mutex
	texts []string
}

func (p *capturingPublisher) Publish(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, text)
}

func (p *capturingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

func eventPayload(eventType, objectID string) string {
	return fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {"object": {"id": %q}}
	}`, stripe.APIVersion, eventType, objectID)
}

func signHeader(t *testing.T, payload string) string {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, []byte(payload), testSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func invokeWebhook(t *testing.T, payload, signature string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	publisher := &capturingPublisher{}
	handler := NewWebhookHandler(testSecret, publisher)
	rec, err := invokeWebhookWith(t, handler, payload, signature)
	return rec, err
}

func invokeWebhookWith(t *testing.T, handler *WebhookHandler, payload, signature string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler.HandleWebhook(c)
}

func TestHandleWebhook_PaymentSucceededPublishesNotification(t *testing.T) {
	publisher := &capturingPublisher{}
	handler := NewWebhookHandler(testSecret, publisher)

	payload := eventPayload("invoice.payment_succeeded", "inv_1")
	rec, err := invokeWebhookWith(t, handler, payload, signHeader(t, payload))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", rec.Body.String())
	assert.Equal(t, []string{"Invoice inv_1 payment succeeded"}, publisher.published())
}

func TestHandleWebhook_ChargeRefundedPublishesNotification(t *testing.T) {
	publisher := &capturingPublisher{}
	handler := NewWebhookHandler(testSecret, publisher)

	payload := eventPayload("charge.refunded", "re_1")
	rec, err := invokeWebhookWith(t, handler, payload, signHeader(t, payload))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Refund processed for re_1"}, publisher.published())
}

func TestHandleWebhook_InvalidSignatureRejected(t *testing.T) {
	publisher := &capturingPublisher{}
	handler := NewWebhookHandler(testSecret, publisher)

	payload := eventPayload("invoice.payment_succeeded", "inv_1")
	_, err := invokeWebhookWith(t, handler, payload, "t=12345,v1=deadbeef")
	require.Error(t, err)

	var structuredErr *apperrors.Error
	require.ErrorAs(t, err, &structuredErr)
	assert.Equal(t, apperrors.TypeValidation, structuredErr.Type)
	assert.Empty(t, publisher.published(), "nothing may be published for an unverified event")
}

func TestHandleWebhook_MissingSignatureRejected(t *testing.T) {
	payload := eventPayload("invoice.payment_succeeded", "inv_1")
	_, err := invokeWebhook(t, payload, "")
	require.Error(t, err)

	var structuredErr *apperrors.Error
	require.ErrorAs(t, err, &structuredErr)
	assert.Equal(t, http.StatusBadRequest, structuredErr.HTTPStatus())
}

func TestHandleWebhook_UnhandledEventTypeRejected(t *testing.T) {
	publisher := &capturingPublisher{}
	handler := NewWebhookHandler(testSecret, publisher)

	payload := eventPayload("customer.created", "cus_1")
	_, err := invokeWebhookWith(t, handler, payload, signHeader(t, payload))
	require.Error(t, err)

	var structuredErr *apperrors.Error
	require.ErrorAs(t, err, &structuredErr)
	assert.Equal(t, apperrors.TypeValidation, structuredErr.Type)
	assert.Empty(t, publisher.published())
}

func TestHandleWebhook_TamperedPayloadRejected(t *testing.T) {
	publisher := &capturingPublisher{}
	handler := NewWebhookHandler(testSecret, publisher)

	payload := eventPayload("invoice.payment_succeeded", "inv_1")
	signature := signHeader(t, payload)
	tampered := strings.Replace(payload, "inv_1", "inv_2", 1)

	_, err := invokeWebhookWith(t, handler, tampered, signature)
	require.Error(t, err)
	assert.Empty(t, publisher.published())
}
