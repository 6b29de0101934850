package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReservationState represents the lifecycle state of a reservation
type ReservationState string

const (
	ReservationPending   ReservationState = "pending"
	ReservationConfirmed ReservationState = "confirmed"
	ReservationCancelled ReservationState = "cancelled"
)

// PaymentMethod how a reservation was paid for
type PaymentMethod string

const (
	PaymentDirect PaymentMethod = "direct"
	PaymentPass   PaymentMethod = "pass"
)

// Validate returns an error for unknown payment methods
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentDirect, PaymentPass:
		return nil
	default:
		return fmt.Errorf("unknown payment method %q", string(m))
	}
}

// Reservation бронирование барр в конкретный слот на конкретную дату
// Никогда не удаляется физически: отмена это смена состояния
type Reservation struct {
	ID             int64
	CustomerID     uuid.UUID
	CustomerEmail  string // контакт для уведомлений на момент бронирования
	Date           time.Time
	TimeSlotID     int64
	OfferingTypeID int64
	ResourceCost   int // снимок OfferingType.ResourceCost на момент бронирования
	PaymentMethod  PaymentMethod
	PassInstanceID *int64
	PricePaidCents int64
	State          ReservationState

	AccessCode           *string
	AccessCodeExternalID *string

	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive returns true if the reservation occupies bays
func (r *Reservation) IsActive() bool {
	return r.State == ReservationPending || r.State == ReservationConfirmed
}

// IsOwnedBy returns true if the customer created the reservation
func (r *Reservation) IsOwnedBy(customerID uuid.UUID) bool {
	return r.CustomerID == customerID
}

// HasAccessCode returns true if a vendor passcode is attached
func (r *Reservation) HasAccessCode() bool {
	return r.AccessCodeExternalID != nil && *r.AccessCodeExternalID != ""
}

// CanTransitionTo проверяет допустимость перехода pending -> confirmed -> cancelled
func (r *Reservation) CanTransitionTo(next ReservationState) bool {
	switch r.State {
	case ReservationPending:
		return next == ReservationConfirmed || next == ReservationCancelled
	case ReservationConfirmed:
		return next == ReservationCancelled
	default:
		return false
	}
}

// CheckCancellable проверяет состояние и окно отмены
// Отмена разрешена, только если до начала строго больше cutoff
func (r *Reservation) CheckCancellable(startsAt, now time.Time, cutoff time.Duration) error {
	if !r.CanTransitionTo(ReservationCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, ReservationCancelled)
	}
	if startsAt.Sub(now) <= cutoff {
		return ErrCancellationWindowExpired
	}
	return nil
}
