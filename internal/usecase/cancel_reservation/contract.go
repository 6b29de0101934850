package cancel_reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// ReservationService отмена бронирования и возврат занятия на абонемент
type ReservationService interface {
	Cancel(ctx context.Context, reservationID int64, requesterID uuid.UUID) (*domain.Reservation, error)
}

// PaymentRepository интерфейс журнала платежей
type PaymentRepository interface {
	GetByReservationID(ctx context.Context, reservationID int64) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error
}

// OutboxRepository интерфейс очереди побочных эффектов
type OutboxRepository interface {
	Enqueue(ctx context.Context, task *domain.OutboxTask) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
