package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	couponRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/coupon"
)

// CouponRepository in-memory купоны
type CouponRepository struct {
	store *Store
}

// Coupons returns the coupon repository
func (s *Store) Coupons() *CouponRepository {
	return &CouponRepository{store: s}
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, c := range r.store.data.coupons {
		if c.Code == code {
			c := c
			return &c, nil
		}
	}
	return nil, couponRepo.ErrCouponNotFound
}

func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*domain.Coupon, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.data.coupons[id]
	if !ok {
		return nil, couponRepo.ErrCouponNotFound
	}
	return &c, nil
}

func (r *CouponRepository) CountRedemptions(ctx context.Context, couponID int64, customerID uuid.UUID) (domain.CouponUsage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var usage domain.CouponUsage
	for _, red := range r.store.data.redemptions {
		if red.CouponID != couponID {
			continue
		}
		usage.Total++
		if red.CustomerID == customerID {
			usage.PerCustomer++
		}
	}
	return usage, nil
}

func (r *CouponRepository) CreateRedemption(ctx context.Context, red *domain.CouponRedemption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	red.ID = r.store.id()
	red.RedeemedAt = r.store.Now()
	r.store.data.redemptions = append(r.store.data.redemptions, *red)
	return nil
}
