package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// CreateRequest запрос на создание подтверждённого бронирования
// Для PaymentPass обязателен PassInstanceID, цена при этом нулевая
type CreateRequest struct {
	CustomerID     uuid.UUID
	CustomerEmail  string
	Date           time.Time
	TimeSlotID     int64
	OfferingID     int64
	PaymentMethod  domain.PaymentMethod
	PassInstanceID *int64
	PricePaidCents int64
}

// ToDomain собирает черновик бронирования по проверенной услуге
// Стоимость в барах берётся из каталога, а не из запроса
func (r *CreateRequest) ToDomain(offering *domain.OfferingType) *domain.Reservation {
	res := &domain.Reservation{
		CustomerID:     r.CustomerID,
		CustomerEmail:  r.CustomerEmail,
		Date:           domain.DateOnly(r.Date),
		TimeSlotID:     r.TimeSlotID,
		OfferingTypeID: offering.ID,
		ResourceCost:   offering.ResourceCost,
		PaymentMethod:  r.PaymentMethod,
		PricePaidCents: r.PricePaidCents,
		State:          domain.ReservationConfirmed,
	}
	if r.PaymentMethod == domain.PaymentPass {
		id := *r.PassInstanceID
		res.PassInstanceID = &id
		res.PricePaidCents = 0
	}
	return res
}
