package redeem_pass

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на бронирование по абонементу
// Без PassInstanceID списывается абонемент, который истекает раньше остальных
type Request struct {
	CustomerID     uuid.UUID
	CustomerEmail  string
	Date           time.Time
	TimeSlotID     int64
	OfferingID     int64
	PassInstanceID *int64
}

// Response модель ответа
type Response struct {
	ReservationID  int64
	PassInstanceID int64
}
