package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
)

// ReservationRepository in-memory бронирования
type ReservationRepository struct {
	store *Store
}

// Reservations returns the reservation repository
func (s *Store) Reservations() *ReservationRepository {
	return &ReservationRepository{store: s}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.Now()
	res.ID = r.store.id()
	res.Date = domain.DateOnly(res.Date)
	res.CreatedAt = now
	res.UpdatedAt = now
	r.store.data.reservations[res.ID] = *res
	return res, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, ok := r.store.data.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return &res, nil
}

func (r *ReservationRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.Reservation, 0)
	for _, res := range r.store.data.reservations {
		if res.CustomerID == customerID {
			res := res
			out = append(out, &res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *ReservationRepository) SumActiveResourceCost(ctx context.Context, date time.Time, timeSlotID int64) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	day := domain.DateOnly(date)
	total := 0
	for _, res := range r.store.data.reservations {
		if res.TimeSlotID == timeSlotID && res.Date.Equal(day) && res.IsActive() {
			total += res.ResourceCost
		}
	}
	return total, nil
}

func (r *ReservationRepository) ReservedBaysByDate(ctx context.Context, date time.Time) (map[int64]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	day := domain.DateOnly(date)
	out := make(map[int64]int)
	for _, res := range r.store.data.reservations {
		if res.Date.Equal(day) && res.IsActive() {
			out[res.TimeSlotID] += res.ResourceCost
		}
	}
	return out, nil
}

func (r *ReservationRepository) UpdateState(ctx context.Context, id int64, state domain.ReservationState) error {
	return r.mutate(id, func(res *domain.Reservation, now time.Time) {
		res.State = state
		if state == domain.ReservationCancelled {
			res.CancelledAt = &now
		}
	})
}

func (r *ReservationRepository) SetAccessCode(ctx context.Context, id int64, code, externalID string) error {
	return r.mutate(id, func(res *domain.Reservation, _ time.Time) {
		res.AccessCode = &code
		res.AccessCodeExternalID = &externalID
	})
}

func (r *ReservationRepository) ClearAccessCode(ctx context.Context, id int64) error {
	return r.mutate(id, func(res *domain.Reservation, _ time.Time) {
		res.AccessCode = nil
		res.AccessCodeExternalID = nil
	})
}

func (r *ReservationRepository) mutate(id int64, fn func(res *domain.Reservation, now time.Time)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, ok := r.store.data.reservations[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	now := r.store.Now()
	fn(&res, now)
	res.UpdatedAt = now
	r.store.data.reservations[id] = res
	return nil
}
