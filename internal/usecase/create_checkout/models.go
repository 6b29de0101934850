package create_checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Config параметры hosted checkout
type Config struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// Request модель запроса на создание платёжной сессии
// Для бронирования ItemID это id услуги, Date и TimeSlotID обязательны
type Request struct {
	CustomerID    uuid.UUID       // из токена
	CustomerEmail string          // из токена, может быть пустым
	ItemType      domain.ItemType // reservation | pass
	ItemID        int64
	Date          *time.Time
	TimeSlotID    *int64
	CouponCode    *string
}

// Response модель ответа
type Response struct {
	SessionID       string
	RedirectURL     string
	BasePriceCents  int64
	FinalPriceCents int64
	CouponID        *int64
}
