package create_checkout

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	createCheckout "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_checkout"
)

var errInvalidDate = errors.New("invalid date")

// CreateCheckoutRequest HTTP request model
type CreateCheckoutRequest struct {
	ItemType   string  `json:"itemType"` // "reservation" | "pass"
	ItemID     int64   `json:"itemId"`
	Date       *string `json:"date,omitempty"` // "2030-01-01", только для reservation
	TimeSlotID *int64  `json:"timeSlotId,omitempty"`
	CouponCode *string `json:"couponCode,omitempty"`
}

// CheckoutResponse HTTP response model
type CheckoutResponse struct {
	SessionID       string `json:"sessionId"`
	RedirectURL     string `json:"redirectUrl"`
	BasePriceCents  int64  `json:"basePriceCents"`
	FinalPriceCents int64  `json:"finalPriceCents"`
	CouponID        *int64 `json:"couponId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateCheckoutRequest) ToUseCaseRequest(customerID uuid.UUID, email string) (*createCheckout.Request, error) {
	req := &createCheckout.Request{
		CustomerID:    customerID,
		CustomerEmail: email,
		ItemType:      domain.ItemType(r.ItemType),
		ItemID:        r.ItemID,
		TimeSlotID:    r.TimeSlotID,
		CouponCode:    r.CouponCode,
	}

	if r.Date != nil {
		date, err := time.Parse(domain.DateFormat, *r.Date)
		if err != nil {
			return nil, errInvalidDate
		}
		req.Date = &date
	}
	return req, nil
}

func FromUseCaseResponse(resp *createCheckout.Response) *CheckoutResponse {
	return &CheckoutResponse{
		SessionID:       resp.SessionID,
		RedirectURL:     resp.RedirectURL,
		BasePriceCents:  resp.BasePriceCents,
		FinalPriceCents: resp.FinalPriceCents,
		CouponID:        resp.CouponID,
	}
}
