package domain

import "time"

// Studio defaults
const (
	DefaultTotalBays               = 3
	DefaultCancellationCutoffHours = 24
	DefaultAccessMinutesBefore     = 15
	DefaultAccessMinutesAfter      = 15
	DefaultMorningCutoff           = "14:00"
	DefaultCurrency                = "eur"
)

// Resource costs
const (
	SingleBayCost = 1
	FullRoomCost  = DefaultTotalBays
)

// Business validation constants
const (
	PasscodeDigits    = 6
	MaxCouponCodeLen  = 64
	MaxPassClassCount = 100
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DateOnly обрезает время, оставляя полночь той же даты в UTC
// Даты бронирований хранятся как DATE и сравниваются без часового пояса
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ActiveReservationStates состояния, которые занимают места в слоте
var ActiveReservationStates = []ReservationState{
	ReservationPending,
	ReservationConfirmed,
}
