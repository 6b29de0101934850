package access

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/ttlock"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	SetAccessCode(ctx context.Context, id int64, code, externalID string) error
	ClearAccessCode(ctx context.Context, id int64) error
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

// OutboxRepository интерфейс очереди отложенных задач
type OutboxRepository interface {
	Enqueue(ctx context.Context, task *domain.OutboxTask) error
}

// LockClient интерфейс клиента умного замка
type LockClient interface {
	AddPasscode(ctx context.Context, code, name string, from, until time.Time) (*ttlock.Passcode, error)
	DeletePasscode(ctx context.Context, externalID string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчик ошибок внешних провайдеров
type Metrics interface {
	UpstreamError(provider string)
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
