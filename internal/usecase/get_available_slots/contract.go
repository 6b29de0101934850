package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// AvailabilityService интерфейс движка доступности
type AvailabilityService interface {
	// DayAvailability занятость всех слотов, которые проводятся в эту дату
	DayAvailability(ctx context.Context, date time.Time) ([]*domain.SlotAvailability, error)
	MorningCutoff() types.TimeString
	Location() *time.Location
	Now() time.Time
}

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetOffering(ctx context.Context, id int64) (*domain.OfferingType, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
