package get_available_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.OfferingID != nil && *req.OfferingID <= 0 {
		return fmt.Errorf("%w: offeringId must be positive", ErrInvalidInput)
	}
	return nil
}
