package models

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Reason коды отказа купона
type Reason string

const (
	ReasonNotFound     Reason = "not-found"
	ReasonExpired      Reason = "expired"
	ReasonNotStarted   Reason = "not-started"
	ReasonAlreadyUsed  Reason = "already-used"
	ReasonWrongScope   Reason = "wrong-scope"
	ReasonExhausted    Reason = "exhausted"
	ReasonFullDiscount Reason = "full-discount" // нулевую сумму провайдер оплаты не принимает
)

// ValidateRequest запрос на проверку купона
type ValidateRequest struct {
	Code           string
	CustomerID     uuid.UUID
	ItemType       domain.ItemType
	ItemID         int64
	BasePriceCents int64
}

// ValidationResult результат проверки
// При Valid=false FinalPriceCents равен базовой цене
type ValidationResult struct {
	Valid           bool
	FinalPriceCents int64
	CouponID        *int64
	Reason          Reason
}

// RedeemRequest запись погашения после оплаты
type RedeemRequest struct {
	CouponID   int64
	CustomerID uuid.UUID
	ItemType   domain.ItemType
	ItemID     int64
	PaymentID  int64
}

// ReasonFor сопоставляет доменную ошибку купона с кодом отказа
func ReasonFor(err error) (Reason, bool) {
	switch err {
	case domain.ErrCouponNotFound:
		return ReasonNotFound, true
	case domain.ErrCouponExpired:
		return ReasonExpired, true
	case domain.ErrCouponNotStarted:
		return ReasonNotStarted, true
	case domain.ErrCouponAlreadyUsed:
		return ReasonAlreadyUsed, true
	case domain.ErrCouponWrongScope:
		return ReasonWrongScope, true
	case domain.ErrCouponExhausted:
		return ReasonExhausted, true
	default:
		return "", false
	}
}
