package list_passes

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// EntitlementLedger возвращает абонементы с фактическим состоянием на текущий момент
type EntitlementLedger interface {
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.PassInstance, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
