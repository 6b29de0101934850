package complete_payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	couponModels "github.com/m04kA/SMC-StudioBooking/internal/service/coupons/models"
	resModels "github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
)

// EventVerifier проверяет подпись и разбирает событие провайдера
type EventVerifier interface {
	ConstructEvent(payload []byte, signatureHeader string) (*domain.CheckoutEvent, error)
}

// PaymentRepository интерфейс журнала платежей
type PaymentRepository interface {
	Record(ctx context.Context, p *domain.Payment) (bool, error)
	LinkReservation(ctx context.Context, paymentID, reservationID int64) error
	LinkPass(ctx context.Context, paymentID, passInstanceID int64) error
	UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error
}

// ReservationService создание оплаченного бронирования
type ReservationService interface {
	Create(ctx context.Context, req *resModels.CreateRequest) (*domain.Reservation, error)
}

// EntitlementLedger выпуск абонементов
type EntitlementLedger interface {
	Instantiate(ctx context.Context, customerID uuid.UUID, customerEmail string, passTypeID int64) (*domain.PassInstance, error)
}

// CouponRedeemer погашение купонов
type CouponRedeemer interface {
	Redeem(ctx context.Context, req *couponModels.RedeemRequest) error
}

// OutboxRepository интерфейс очереди побочных эффектов
type OutboxRepository interface {
	Enqueue(ctx context.Context, task *domain.OutboxTask) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчик исходов обработки вебхука
type Metrics interface {
	WebhookEvent(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
