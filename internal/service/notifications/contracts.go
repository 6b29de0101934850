package notifications

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
}

// PassRepository интерфейс репозитория абонементов
type PassRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PassInstance, error)
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetOffering(ctx context.Context, id int64) (*domain.OfferingType, error)
	GetPassType(ctx context.Context, id int64) (*domain.PassType, error)
	GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

// Sender доставка письма: напрямую провайдеру или через очередь
type Sender interface {
	Send(ctx context.Context, msg *domain.EmailMessage) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
