package cancel_reservation

import (
	"fmt"

	"github.com/google/uuid"
)

func validateRequest(req *Request) error {
	if req.ReservationID <= 0 {
		return fmt.Errorf("%w: reservation id must be positive", ErrInvalidInput)
	}
	if req.RequesterID == uuid.Nil {
		return fmt.Errorf("%w: requester id is required", ErrInvalidInput)
	}
	return nil
}
