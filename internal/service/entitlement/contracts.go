package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// PassRepository интерфейс репозитория абонементов
type PassRepository interface {
	Create(ctx context.Context, p *domain.PassInstance) (*domain.PassInstance, error)
	GetByID(ctx context.Context, id int64) (*domain.PassInstance, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.PassInstance, error)
	ListRedeemable(ctx context.Context, customerID uuid.UUID, now time.Time) ([]*domain.PassInstance, error)
	Update(ctx context.Context, p *domain.PassInstance) error
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetPassType(ctx context.Context, id int64) (*domain.PassType, error)
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
