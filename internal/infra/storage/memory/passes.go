package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	passRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/pass"
)

// PassRepository in-memory абонементы
type PassRepository struct {
	store *Store
}

// Passes returns the pass repository
func (s *Store) Passes() *PassRepository {
	return &PassRepository{store: s}
}

func (r *PassRepository) Create(ctx context.Context, p *domain.PassInstance) (*domain.PassInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.Now()
	p.ID = r.store.id()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.store.data.passes[p.ID] = *p
	return p, nil
}

func (r *PassRepository) GetByID(ctx context.Context, id int64) (*domain.PassInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.data.passes[id]
	if !ok {
		return nil, passRepo.ErrPassNotFound
	}
	return &p, nil
}

func (r *PassRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.PassInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.PassInstance, 0)
	for _, p := range r.store.data.passes {
		if p.CustomerID == customerID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *PassRepository) ListRedeemable(ctx context.Context, customerID uuid.UUID, now time.Time) ([]*domain.PassInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.PassInstance, 0)
	for _, p := range r.store.data.passes {
		if p.CustomerID == customerID && p.CanRedeem(now) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresBefore(out[j]) })
	return out, nil
}

func (r *PassRepository) Update(ctx context.Context, p *domain.PassInstance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.data.passes[p.ID]; !ok {
		return passRepo.ErrPassNotFound
	}
	p.UpdatedAt = r.store.Now()
	r.store.data.passes[p.ID] = *p
	return nil
}
