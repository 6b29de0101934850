package redeem_pass

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	redeemPass "github.com/m04kA/SMC-StudioBooking/internal/usecase/redeem_pass"
)

// RedeemPassRequest HTTP request model
// Если passInstanceId не задан, подходящий абонемент выбирается автоматически
type RedeemPassRequest struct {
	Date           string `json:"date"` // "2030-01-01"
	TimeSlotID     int64  `json:"timeSlotId"`
	OfferingID     int64  `json:"offeringId"`
	PassInstanceID *int64 `json:"passInstanceId,omitempty"`
}

// RedeemPassResponse HTTP response model
type RedeemPassResponse struct {
	ReservationID  int64 `json:"reservationId"`
	PassInstanceID int64 `json:"passInstanceId"`
}

func (r *RedeemPassRequest) ToUseCaseRequest(customerID uuid.UUID, email string) (*redeemPass.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &redeemPass.Request{
		CustomerID:     customerID,
		CustomerEmail:  email,
		Date:           date,
		TimeSlotID:     r.TimeSlotID,
		OfferingID:     r.OfferingID,
		PassInstanceID: r.PassInstanceID,
	}, nil
}
