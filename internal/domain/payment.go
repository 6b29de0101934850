package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus статус записи о платеже
type PaymentStatus string

const (
	PaymentCompleted     PaymentStatus = "completed"
	PaymentRefundPending PaymentStatus = "refund_pending"
	PaymentRefunded      PaymentStatus = "refunded"
)

// Payment запись журнала платежей, ключом идемпотентности служит SessionID
type Payment struct {
	ID              int64
	SessionID       string
	PaymentIntentID string
	CustomerID      uuid.UUID
	ItemType        ItemType
	ItemID          int64
	AmountCents     int64
	Currency        string
	Status          PaymentStatus
	ReservationID   *int64
	PassInstanceID  *int64
	CouponID        *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CheckoutSession созданная у провайдера платёжная сессия
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutEvent подтверждённое провайдером завершение оплаты
type CheckoutEvent struct {
	EventID         string
	SessionID       string
	PaymentIntentID string
	AmountCents     int64
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
}
