package get_catalog

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

type CatalogRepository interface {
	ListOfferings(ctx context.Context) ([]*domain.OfferingType, error)
	ListPassTypes(ctx context.Context) ([]*domain.PassType, error)
	ListTimeSlots(ctx context.Context) ([]*domain.TimeSlot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
