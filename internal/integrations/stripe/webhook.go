package stripe

import (
	"encoding/json"
	"fmt"
	"time"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// DefaultTolerance допустимое расхождение времени подписи webhook
const DefaultTolerance = webhook.DefaultTolerance

const eventCheckoutCompleted = "checkout.session.completed"

// Webhook проверка подписи и разбор событий Stripe
type Webhook struct {
	secret    string
	tolerance time.Duration
}

// NewWebhook создает проверяющий подпись обработчик
func NewWebhook(secret string, tolerance time.Duration) *Webhook {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Webhook{secret: secret, tolerance: tolerance}
}

// ConstructEvent проверяет заголовок Stripe-Signature и извлекает завершённую оплату
// Для остальных типов событий и неоплаченных сессий возвращает ErrUnhandledEvent
func (w *Webhook) ConstructEvent(payload []byte, signatureHeader string) (*domain.CheckoutEvent, error) {
	if err := w.Verify(payload, signatureHeader); err != nil {
		return nil, err
	}

	// версия API события задаётся настройками endpoint в Stripe, а не версией SDK
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, w.secret, webhook.ConstructEventOptions{
		Tolerance:                w.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if string(event.Type) != eventCheckoutCompleted {
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEvent, event.Type)
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s without data", ErrInvalidPayload, event.ID)
	}

	var s stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if s.PaymentStatus != stripeapi.CheckoutSessionPaymentStatusPaid {
		return nil, fmt.Errorf("%w: session %s payment_status=%s", ErrUnhandledEvent, s.ID, s.PaymentStatus)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("%w: session without id", ErrInvalidPayload)
	}

	email := s.CustomerEmail
	if email == "" && s.CustomerDetails != nil {
		email = s.CustomerDetails.Email
	}
	var paymentIntentID string
	if s.PaymentIntent != nil {
		paymentIntentID = s.PaymentIntent.ID
	}

	return &domain.CheckoutEvent{
		EventID:         event.ID,
		SessionID:       s.ID,
		PaymentIntentID: paymentIntentID,
		AmountCents:     s.AmountTotal,
		Currency:        string(s.Currency),
		CustomerEmail:   email,
		Metadata:        s.Metadata,
	}, nil
}

// Verify проверяет подпись вида "t=<unix>,v1=<hex>" (допускается несколько v1)
func (w *Webhook) Verify(payload []byte, signatureHeader string) error {
	if w.secret == "" {
		return fmt.Errorf("%w: webhook secret is not configured", ErrInvalidSignature)
	}
	if err := webhook.ValidatePayloadWithTolerance(payload, signatureHeader, w.secret, w.tolerance); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}

// SignatureHeader строит заголовок Stripe-Signature для payload
// Используется для локальной отправки тестовых событий
func SignatureHeader(secret string, payload []byte, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Header
}
