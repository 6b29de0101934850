package payments

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/stripe"
)

// PaymentRepository интерфейс журнала платежей
type PaymentRepository interface {
	UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error
}

// RefundClient интерфейс платёжного провайдера
type RefundClient interface {
	CreateRefund(ctx context.Context, paymentIntentID string, amountCents int64, idempotencyKey string) (*stripe.Refund, error)
}

// Metrics счётчик ошибок внешних провайдеров
type Metrics interface {
	UpstreamError(provider string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
