package create_checkout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// validateRequest проверяет форму запроса, бизнес-правила проверяются дальше
func validateRequest(req *Request) error {
	if req.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}
	if err := req.ItemType.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.ItemID <= 0 {
		return fmt.Errorf("%w: item id must be positive", ErrInvalidInput)
	}

	switch req.ItemType {
	case domain.ItemReservation:
		if req.Date == nil || req.Date.IsZero() {
			return fmt.Errorf("%w: date is required for reservation", ErrInvalidInput)
		}
		if req.TimeSlotID == nil || *req.TimeSlotID <= 0 {
			return fmt.Errorf("%w: time slot id is required for reservation", ErrInvalidInput)
		}
	case domain.ItemPass:
		if req.Date != nil || req.TimeSlotID != nil {
			return fmt.Errorf("%w: date and time slot are not allowed for pass purchase", ErrInvalidInput)
		}
	}

	if req.CouponCode != nil && len(*req.CouponCode) > domain.MaxCouponCodeLen {
		return fmt.Errorf("%w: coupon code is too long", ErrInvalidInput)
	}
	return nil
}
