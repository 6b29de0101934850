package redeem_pass

import (
	"fmt"

	"github.com/google/uuid"
)

func validateRequest(req *Request) error {
	if req.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.TimeSlotID <= 0 {
		return fmt.Errorf("%w: time slot id must be positive", ErrInvalidInput)
	}
	if req.OfferingID <= 0 {
		return fmt.Errorf("%w: offering id must be positive", ErrInvalidInput)
	}
	if req.PassInstanceID != nil && *req.PassInstanceID <= 0 {
		return fmt.Errorf("%w: pass instance id must be positive", ErrInvalidInput)
	}
	return nil
}
