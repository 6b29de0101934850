package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

func newTestClient(url string) *Client {
	return NewClient(url, "sk_test", time.Second, 0, logger.NewNop())
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "900", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "eur", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "Barra individual", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "reservation", r.PostForm.Get("metadata[item_type]"))
		assert.Equal(t, "ana@example.com", r.PostForm.Get("customer_email"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":     "cs_test_1",
			"object": "checkout.session",
			"url":    "https://checkout.stripe.test/cs_test_1",
		})
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).CreateCheckoutSession(context.Background(), &CheckoutParams{
		ProductName:   "Barra individual",
		AmountCents:   900,
		Currency:      "eur",
		CustomerEmail: "ana@example.com",
		SuccessURL:    "https://studio.test/ok",
		CancelURL:     "https://studio.test/cancel",
		Metadata:      map[string]string{"item_type": "reservation"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", session.URL)
}

func TestClient_CreateCheckoutSession_WithoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_test_2","object":"checkout.session"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateCheckoutSession(context.Background(), &CheckoutParams{
		ProductName: "Sala completa", AmountCents: 2500, Currency: "eur",
	})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_CreateRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "refund-42", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_123", r.PostForm.Get("payment_intent"))
		assert.Equal(t, "1000", r.PostForm.Get("amount"))
		_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","status":"succeeded"}`))
	}))
	defer srv.Close()

	refund, err := newTestClient(srv.URL).CreateRefund(context.Background(), "pi_123", 1000, "refund-42")
	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, "succeeded", refund.Status)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"invalid request", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"No such payment_intent"}}`, ErrInvalidRequest},
		{"card declined", http.StatusPaymentRequired, `{"error":{"type":"card_error","code":"card_declined","message":"declined"}}`, ErrInvalidRequest},
		{"server error", http.StatusInternalServerError, `{"error":{"type":"api_error","message":"oops"}}`, ErrUpstream},
		{"bad gateway", http.StatusBadGateway, `oops`, ErrUpstream},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"invalid_request_error","message":"slow down"}}`, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).CreateRefund(context.Background(), "pi_123", 0, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_UnreachableIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).CreateRefund(context.Background(), "pi_123", 0, "refund-1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClient_RetriesServerErrorsWithSameKey(t *testing.T) {
	var calls int32
	keys := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Stripe-Should-Retry", "true")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"busy"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"re_2","object":"refund","status":"pending"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", 5*time.Second, 1, logger.NewNop())
	refund, err := c.CreateRefund(context.Background(), "pi_9", 0, "refund-9")
	require.NoError(t, err)
	assert.Equal(t, "pending", refund.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "refund-9", <-keys)
	assert.Equal(t, "refund-9", <-keys)
}
