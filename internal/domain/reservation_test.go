package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservation_CheckCancellable(t *testing.T) {
	startsAt := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	cutoff := 24 * time.Hour

	tests := []struct {
		name    string
		state   ReservationState
		now     time.Time
		wantErr error
	}{
		{"one minute before cutoff", ReservationConfirmed, startsAt.Add(-cutoff - time.Minute), nil},
		{"exactly at cutoff", ReservationConfirmed, startsAt.Add(-cutoff), ErrCancellationWindowExpired},
		{"one minute after cutoff", ReservationConfirmed, startsAt.Add(-cutoff + time.Minute), ErrCancellationWindowExpired},
		{"pending is cancellable", ReservationPending, startsAt.Add(-48 * time.Hour), nil},
		{"already cancelled", ReservationCancelled, startsAt.Add(-48 * time.Hour), ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{State: tt.state}
			err := r.CheckCancellable(startsAt, tt.now, cutoff)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReservation_CanTransitionTo(t *testing.T) {
	pending := &Reservation{State: ReservationPending}
	assert.True(t, pending.CanTransitionTo(ReservationConfirmed))
	assert.True(t, pending.CanTransitionTo(ReservationCancelled))

	confirmed := &Reservation{State: ReservationConfirmed}
	assert.False(t, confirmed.CanTransitionTo(ReservationPending))
	assert.True(t, confirmed.CanTransitionTo(ReservationCancelled))

	cancelled := &Reservation{State: ReservationCancelled}
	assert.False(t, cancelled.CanTransitionTo(ReservationConfirmed))
	assert.False(t, cancelled.CanTransitionTo(ReservationPending))
	assert.False(t, cancelled.IsActive())
}

func TestReservedBays(t *testing.T) {
	reservations := []*Reservation{
		{State: ReservationConfirmed, ResourceCost: 1},
		{State: ReservationPending, ResourceCost: 1},
		{State: ReservationCancelled, ResourceCost: 3},
	}
	assert.Equal(t, 2, ReservedBays(reservations))
	assert.Equal(t, 1, RemainingBays(DefaultTotalBays, ReservedBays(reservations)))
	assert.Equal(t, 0, RemainingBays(DefaultTotalBays, 5))
}

func TestIsBookable(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, IsBookable(now.Add(time.Hour), now, 3, FullRoomCost))
	assert.False(t, IsBookable(now.Add(time.Hour), now, 2, FullRoomCost), "full room needs every bay")
	assert.True(t, IsBookable(now.Add(time.Hour), now, 1, SingleBayCost))
	assert.False(t, IsBookable(now.Add(time.Hour), now, 0, SingleBayCost))
	assert.False(t, IsBookable(now, now, 3, SingleBayCost), "slot already started")
	assert.False(t, IsBookable(now.Add(-time.Minute), now, 3, SingleBayCost))
}
