package cancel_reservation

import (
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	cancelReservation "github.com/m04kA/SMC-StudioBooking/internal/usecase/cancel_reservation"
)

// CancelReservationResponse HTTP response model
type CancelReservationResponse struct {
	ReservationID   int64  `json:"reservationId"`
	State           string `json:"state"`
	RefundScheduled bool   `json:"refundScheduled"`
	PassCredited    bool   `json:"passCredited"`
	AccessRevoked   bool   `json:"accessRevoked"`
}

func FromUseCaseResponse(resp *cancelReservation.Response) *CancelReservationResponse {
	return &CancelReservationResponse{
		ReservationID:   resp.ReservationID,
		State:           string(domain.ReservationCancelled),
		RefundScheduled: resp.RefundScheduled,
		PassCredited:    resp.PassCredited,
		AccessRevoked:   resp.AccessRevoked,
	}
}
