package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemType тип покупаемой позиции
type ItemType string

const (
	ItemReservation ItemType = "reservation"
	ItemPass        ItemType = "pass"
)

// Validate returns an error for unknown item types
func (t ItemType) Validate() error {
	switch t {
	case ItemReservation, ItemPass:
		return nil
	default:
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidMetadata, string(t))
	}
}

// DiscountType тип скидки купона
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Coupon rejection reasons
var (
	ErrCouponNotFound    = errors.New("domain: coupon not found")
	ErrCouponExpired     = errors.New("domain: coupon expired")
	ErrCouponNotStarted  = errors.New("domain: coupon not yet valid")
	ErrCouponAlreadyUsed = errors.New("domain: coupon already used by customer")
	ErrCouponWrongScope  = errors.New("domain: coupon does not apply to item")
	ErrCouponExhausted   = errors.New("domain: coupon redemption limit reached")
)

// Coupon скидочный код
// Scope пустой = применим к любой позиции; ItemID пустой = к любой позиции типа
type Coupon struct {
	ID             int64
	Code           string
	DiscountType   DiscountType
	DiscountValue  int64 // проценты (1..100) или центы
	ScopeItemType  *ItemType
	ScopeItemID    *int64
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	MaxRedemptions *int
	MaxPerCustomer int
	Active         bool
}

// NormalizeCouponCode приводит код к каноничному виду
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponUsage счётчики погашений купона
type CouponUsage struct {
	Total       int
	PerCustomer int
}

// Check выполняет все проверки купона для позиции и клиента
func (c *Coupon) Check(itemType ItemType, itemID int64, usage CouponUsage, now time.Time) error {
	if !c.Active {
		return ErrCouponNotFound
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return ErrCouponNotStarted
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.ScopeItemType != nil && *c.ScopeItemType != itemType {
		return ErrCouponWrongScope
	}
	if c.ScopeItemID != nil && *c.ScopeItemID != itemID {
		return ErrCouponWrongScope
	}
	if c.MaxRedemptions != nil && usage.Total >= *c.MaxRedemptions {
		return ErrCouponExhausted
	}
	perCustomer := c.MaxPerCustomer
	if perCustomer <= 0 {
		perCustomer = 1
	}
	if usage.PerCustomer >= perCustomer {
		return ErrCouponAlreadyUsed
	}
	return nil
}

// Apply возвращает цену после скидки, не ниже нуля
func (c *Coupon) Apply(priceCents int64) int64 {
	var discount int64
	switch c.DiscountType {
	case DiscountPercent:
		discount = priceCents * c.DiscountValue / 100
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > priceCents {
		return 0
	}
	return priceCents - discount
}

// CouponRedemption факт использования купона клиентом
type CouponRedemption struct {
	ID         int64
	CouponID   int64
	CustomerID uuid.UUID
	ItemType   ItemType
	ItemID     int64
	PaymentID  int64
	RedeemedAt time.Time
}
