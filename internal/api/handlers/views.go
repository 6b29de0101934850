package handlers

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// ReservationView JSON представление бронирования для клиента
type ReservationView struct {
	ID             int64   `json:"id"`
	Date           string  `json:"date"`
	TimeSlotID     int64   `json:"timeSlotId"`
	OfferingTypeID int64   `json:"offeringTypeId"`
	ResourceCost   int     `json:"resourceCost"`
	PaymentMethod  string  `json:"paymentMethod"`
	PassInstanceID *int64  `json:"passInstanceId,omitempty"`
	PricePaidCents int64   `json:"pricePaidCents"`
	State          string  `json:"state"`
	AccessCode     *string `json:"accessCode,omitempty"`
	CancelledAt    *string `json:"cancelledAt,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

func NewReservationView(r *domain.Reservation) ReservationView {
	v := ReservationView{
		ID:             r.ID,
		Date:           r.Date.Format(domain.DateFormat),
		TimeSlotID:     r.TimeSlotID,
		OfferingTypeID: r.OfferingTypeID,
		ResourceCost:   r.ResourceCost,
		PaymentMethod:  string(r.PaymentMethod),
		PassInstanceID: r.PassInstanceID,
		PricePaidCents: r.PricePaidCents,
		State:          string(r.State),
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	// код доступа показываем только по действующему бронированию
	if r.IsActive() {
		v.AccessCode = r.AccessCode
	}
	v.CancelledAt = formatTime(r.CancelledAt)
	return v
}

// PassView JSON представление абонемента клиента
type PassView struct {
	ID               int64   `json:"id"`
	PassTypeID       int64   `json:"passTypeId"`
	ClassesRemaining int     `json:"classesRemaining"`
	ClassesTotal     int     `json:"classesTotal"`
	State            string  `json:"state"`
	ActivatedAt      *string `json:"activatedAt,omitempty"`
	ExpiresAt        *string `json:"expiresAt,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

func NewPassView(p *domain.PassInstance) PassView {
	return PassView{
		ID:               p.ID,
		PassTypeID:       p.PassTypeID,
		ClassesRemaining: p.ClassesRemaining,
		ClassesTotal:     p.ClassesTotal,
		State:            string(p.State),
		ActivatedAt:      formatTime(p.ActivatedAt),
		ExpiresAt:        formatTime(p.ExpiresAt),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
