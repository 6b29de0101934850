package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

func TestCoupon_Apply(t *testing.T) {
	percent := &Coupon{DiscountType: DiscountPercent, DiscountValue: 10}
	assert.Equal(t, int64(900), percent.Apply(1000))

	fixed := &Coupon{DiscountType: DiscountFixed, DiscountValue: 250}
	assert.Equal(t, int64(750), fixed.Apply(1000))

	tooMuch := &Coupon{DiscountType: DiscountFixed, DiscountValue: 5000}
	assert.Equal(t, int64(0), tooMuch.Apply(1000))
}

func TestCoupon_Check(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	base := func() *Coupon {
		return &Coupon{
			ID:             1,
			Code:           "SAVE10",
			DiscountType:   DiscountPercent,
			DiscountValue:  10,
			MaxPerCustomer: 1,
			Active:         true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Coupon)
		usage   CouponUsage
		wantErr error
	}{
		{"valid", func(c *Coupon) {}, CouponUsage{}, nil},
		{"inactive", func(c *Coupon) { c.Active = false }, CouponUsage{}, ErrCouponNotFound},
		{"expired", func(c *Coupon) { c.ValidUntil = &past }, CouponUsage{}, ErrCouponExpired},
		{"not started", func(c *Coupon) { c.ValidFrom = &future }, CouponUsage{}, ErrCouponNotStarted},
		{"already used", func(c *Coupon) {}, CouponUsage{PerCustomer: 1}, ErrCouponAlreadyUsed},
		{"wrong item type", func(c *Coupon) { c.ScopeItemType = ptr.Ptr(ItemPass) }, CouponUsage{}, ErrCouponWrongScope},
		{"wrong item id", func(c *Coupon) {
			c.ScopeItemType = ptr.Ptr(ItemReservation)
			c.ScopeItemID = ptr.Ptr(int64(99))
		}, CouponUsage{}, ErrCouponWrongScope},
		{"exhausted", func(c *Coupon) { c.MaxRedemptions = ptr.Ptr(5) }, CouponUsage{Total: 5}, ErrCouponExhausted},
		{"per customer default", func(c *Coupon) { c.MaxPerCustomer = 0 }, CouponUsage{PerCustomer: 1}, ErrCouponAlreadyUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Check(ItemReservation, 1, tt.usage, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCouponCode("  save10 "))
}
