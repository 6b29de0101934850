package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completedEvent = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "payment_intent": "pi_1",
    "payment_status": "paid",
    "amount_total": 900,
    "currency": "eur",
    "customer_details": {"email": "ana@example.com"},
    "metadata": {"item_type": "pass", "item_id": "20"}
  }}
}`

func TestWebhook_ConstructEvent(t *testing.T) {
	wh := NewWebhook("whsec_test", 5*time.Minute)
	payload := []byte(completedEvent)

	event, err := wh.ConstructEvent(payload, SignatureHeader("whsec_test", payload, time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.EventID)
	assert.Equal(t, "cs_test_1", event.SessionID)
	assert.Equal(t, "pi_1", event.PaymentIntentID)
	assert.Equal(t, int64(900), event.AmountCents)
	assert.Equal(t, "eur", event.Currency)
	assert.Equal(t, "ana@example.com", event.CustomerEmail)
	assert.Equal(t, "20", event.Metadata["item_id"])
}

func TestWebhook_Verify_Rejections(t *testing.T) {
	now := time.Now()
	payload := []byte(completedEvent)
	wh := NewWebhook("whsec_test", 5*time.Minute)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong secret", SignatureHeader("whsec_other", payload, now)},
		{"stale timestamp", SignatureHeader("whsec_test", payload, now.Add(-10*time.Minute))},
		{"missing header", ""},
		{"no v1", "t=1893488400"},
		{"tampered body", SignatureHeader("whsec_test", []byte(`{}`), now)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wh.ConstructEvent(payload, tt.header)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}

	t.Run("unconfigured secret", func(t *testing.T) {
		err := NewWebhook("", 0).Verify(payload, SignatureHeader("", payload, now))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("one of several signatures matches", func(t *testing.T) {
		header := SignatureHeader("whsec_test", payload, now) + ",v1=deadbeef"
		assert.NoError(t, wh.Verify(payload, header))
	})
}

func TestWebhook_ConstructEvent_Unhandled(t *testing.T) {
	wh := NewWebhook("whsec_test", 0)

	for _, body := range []string{
		`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{}}}`,
		`{"id":"evt_3","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_2","payment_status":"unpaid"}}}`,
	} {
		payload := []byte(body)
		_, err := wh.ConstructEvent(payload, SignatureHeader("whsec_test", payload, time.Now()))
		assert.ErrorIs(t, err, ErrUnhandledEvent)
	}
}

func TestWebhook_ConstructEvent_SignedGarbage(t *testing.T) {
	wh := NewWebhook("whsec_test", 0)
	payload := []byte(`not json`)

	_, err := wh.ConstructEvent(payload, SignatureHeader("whsec_test", payload, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}
