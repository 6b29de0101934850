package redeem_pass

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	resModels "github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// CatalogRepository интерфейс каталога слотов
type CatalogRepository interface {
	GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

// ReservationService создание бронирования по абонементу
type ReservationService interface {
	Create(ctx context.Context, req *resModels.CreateRequest) (*domain.Reservation, error)
}

// EntitlementLedger выбор абонемента для списания
type EntitlementLedger interface {
	EligiblePass(ctx context.Context, customerID uuid.UUID, slotStart types.TimeString) (*domain.PassInstance, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
