package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// TaskRepository интерфейс очереди задач
type TaskRepository interface {
	Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*domain.OutboxTask, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastError string, dead bool) error
	Enqueue(ctx context.Context, task *domain.OutboxTask) error
}

// AccessProvisioner выдаёт и отзывает коды доступа
type AccessProvisioner interface {
	Provision(ctx context.Context, reservationID int64) (*domain.AccessGrant, error)
	Revoke(ctx context.Context, reservationID int64) error
}

// Refunder возвращает платежи
type Refunder interface {
	Refund(ctx context.Context, task domain.RefundTaskPayload) error
}

// Notifier отправляет письма клиентам
type Notifier interface {
	NotifyReservation(ctx context.Context, reservationID int64, reason string) error
	NotifyPass(ctx context.Context, passInstanceID int64, amountCents int64) error
}

// Metrics интерфейс для метрик обработки задач
type Metrics interface {
	OutboxTask(kind, result string)
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
