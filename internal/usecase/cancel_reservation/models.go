package cancel_reservation

import "github.com/google/uuid"

// Request модель запроса на отмену
type Request struct {
	ReservationID int64
	RequesterID   uuid.UUID // из токена
}

// Response модель ответа
type Response struct {
	ReservationID   int64
	RefundScheduled bool
	PassCredited    bool
	AccessRevoked   bool
}
