package domain

import "time"

// AccessGrant временный код двери, выданный провайдером замка
type AccessGrant struct {
	Code       string
	ExternalID string
	ValidFrom  time.Time
	ValidUntil time.Time
}

// AccessWindow окно действия кода вокруг слота
func AccessWindow(startsAt, endsAt time.Time, before, after time.Duration) (time.Time, time.Time) {
	return startsAt.Add(-before), endsAt.Add(after)
}
