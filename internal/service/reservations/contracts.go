package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Reservation, error)
	UpdateState(ctx context.Context, id int64, state domain.ReservationState) error
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetOffering(ctx context.Context, id int64) (*domain.OfferingType, error)
	GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

// OutboxRepository интерфейс очереди отложенных задач
type OutboxRepository interface {
	Enqueue(ctx context.Context, task *domain.OutboxTask) error
}

// AvailabilityService интерфейс движка доступности
type AvailabilityService interface {
	CheckBookable(ctx context.Context, date time.Time, timeSlotID int64, offering *domain.OfferingType) (*domain.SlotAvailability, error)
}

// EntitlementLedger интерфейс журнала абонементов
type EntitlementLedger interface {
	Debit(ctx context.Context, passInstanceID int64, customerID uuid.UUID, slotStart types.TimeString) (*domain.PassInstance, error)
	Credit(ctx context.Context, passInstanceID int64) (*domain.PassInstance, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics бизнес-счётчики бронирований
type Metrics interface {
	ReservationCreated(paymentMethod string)
	CapacityRejected(paymentMethod string)
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
