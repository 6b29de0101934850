package create_checkout

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/stripe"
	couponModels "github.com/m04kA/SMC-StudioBooking/internal/service/coupons/models"
)

// CatalogRepository интерфейс каталога услуг и абонементов
type CatalogRepository interface {
	GetOffering(ctx context.Context, id int64) (*domain.OfferingType, error)
	GetPassType(ctx context.Context, id int64) (*domain.PassType, error)
}

// AvailabilityService предварительная проверка слота до оплаты
type AvailabilityService interface {
	CheckBookable(ctx context.Context, date time.Time, timeSlotID int64, offering *domain.OfferingType) (*domain.SlotAvailability, error)
}

// CouponValidator интерфейс проверки купонов
type CouponValidator interface {
	Validate(ctx context.Context, req *couponModels.ValidateRequest) (*couponModels.ValidationResult, error)
}

// PaymentProvider интерфейс платёжного провайдера
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutParams) (*domain.CheckoutSession, error)
}

// Metrics счётчик ошибок внешних провайдеров
type Metrics interface {
	UpstreamError(provider string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
