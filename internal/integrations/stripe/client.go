package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/refund"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент Stripe API (checkout sessions и refunds) поверх stripe-go
type Client struct {
	sessions session.Client
	refunds  refund.Client
	log      Logger
}

// NewClient создает новый экземпляр клиента Stripe
// maxRetries число сетевых повторов SDK (POST повторяется с тем же Idempotency-Key)
func NewClient(baseURL, secretKey string, timeout time.Duration, maxRetries int64, log Logger) *Client {
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, &stripeapi.BackendConfig{
		URL:               stripeapi.String(strings.TrimRight(baseURL, "/")),
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripeapi.Int64(maxRetries),
		LeveledLogger:     &leveledLogger{log: log},
	})

	return &Client{
		sessions: session.Client{B: backend, Key: secretKey},
		refunds:  refund.Client{B: backend, Key: secretKey},
		log:      log,
	}
}

// CreateCheckoutSession открывает hosted checkout на одну позицию
// Метаданные возвращаются в событии checkout.session.completed без изменений
func (c *Client) CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*domain.CheckoutSession, error) {
	sp := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(params.SuccessURL),
		CancelURL:  stripeapi.String(params.CancelURL),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Quantity: stripeapi.Int64(1),
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(params.Currency),
					UnitAmount: stripeapi.Int64(params.AmountCents),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(params.ProductName),
					},
				},
			},
		},
	}
	if params.CustomerEmail != "" {
		sp.CustomerEmail = stripeapi.String(params.CustomerEmail)
	}
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}
	sp.Context = ctx

	s, err := c.sessions.New(sp)
	if err != nil {
		return nil, c.classify("CreateCheckoutSession", err)
	}
	if s.ID == "" || s.URL == "" {
		return nil, fmt.Errorf("%w: checkout session without id or url", ErrInvalidResponse)
	}

	c.log.Info("CreateCheckoutSession: session=%s, amount=%d %s", s.ID, params.AmountCents, params.Currency)
	return &domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// CreateRefund возвращает платёж по payment intent
// idempotencyKey защищает от двойного возврата при повторе задачи
func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string, amountCents int64, idempotencyKey string) (*Refund, error) {
	rp := &stripeapi.RefundParams{
		PaymentIntent: stripeapi.String(paymentIntentID),
	}
	if amountCents > 0 {
		rp.Amount = stripeapi.Int64(amountCents)
	}
	if idempotencyKey != "" {
		rp.SetIdempotencyKey(idempotencyKey)
	}
	rp.Context = ctx

	r, err := c.refunds.New(rp)
	if err != nil {
		return nil, c.classify("CreateRefund", err)
	}

	c.log.Info("CreateRefund: refund=%s for payment_intent=%s, status=%s", r.ID, paymentIntentID, r.Status)
	return &Refund{ID: r.ID, Status: string(r.Status)}, nil
}

// classify сводит ошибки SDK к ошибкам пакета
// 4xx кроме 429 означают отказ Stripe, остальное считается недоступностью
func (c *Client) classify(op string, err error) error {
	var apiErr *stripeapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
	}

	status := apiErr.HTTPStatusCode
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s: status %d: %s", ErrUpstream, op, status, apiErr.Msg)
	}

	c.log.Warn("%s rejected: status=%d, type=%s, code=%s", op, status, apiErr.Type, apiErr.Code)
	return fmt.Errorf("%w: %s: status %d: %s", ErrInvalidRequest, op, status, apiErr.Msg)
}

// leveledLogger направляет журнал SDK в логгер сервиса
// Отладочные и информационные сообщения SDK (каждый запрос) отбрасываются
type leveledLogger struct {
	log Logger
}

func (l *leveledLogger) Debugf(string, ...interface{}) {}

func (l *leveledLogger) Infof(string, ...interface{}) {}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn("stripe: "+format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.log.Error("stripe: "+format, v...)
}
