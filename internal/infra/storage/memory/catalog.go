package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
)

// CatalogRepository in-memory каталог
type CatalogRepository struct {
	store *Store
}

// Catalog returns the catalog repository
func (s *Store) Catalog() *CatalogRepository {
	return &CatalogRepository{store: s}
}

func (r *CatalogRepository) ListOfferings(ctx context.Context) ([]*domain.OfferingType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.OfferingType, 0)
	for _, o := range r.store.data.offerings {
		if o.Active {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CatalogRepository) GetOffering(ctx context.Context, id int64) (*domain.OfferingType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.data.offerings[id]
	if !ok {
		return nil, catalogRepo.ErrOfferingNotFound
	}
	return &o, nil
}

func (r *CatalogRepository) ListPassTypes(ctx context.Context) ([]*domain.PassType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.PassType, 0)
	for _, p := range r.store.data.passTypes {
		if p.Active {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CatalogRepository) GetPassType(ctx context.Context, id int64) (*domain.PassType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.data.passTypes[id]
	if !ok {
		return nil, catalogRepo.ErrPassTypeNotFound
	}
	return &p, nil
}

func (r *CatalogRepository) ListTimeSlots(ctx context.Context) ([]*domain.TimeSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.TimeSlot, 0)
	for _, s := range r.store.data.slots {
		if s.Active {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime.IsBefore(out[j].StartTime)
	})
	return out, nil
}

func (r *CatalogRepository) ListTimeSlotsForDate(ctx context.Context, date time.Time) ([]*domain.TimeSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.TimeSlot, 0)
	for _, s := range r.store.data.slots {
		if s.Active && s.MatchesDate(date) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.IsBefore(out[j].StartTime) })
	return out, nil
}

func (r *CatalogRepository) GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.data.slots[id]
	if !ok {
		return nil, catalogRepo.ErrTimeSlotNotFound
	}
	return &s, nil
}
