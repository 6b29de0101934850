package memory

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	paymentRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/payment"
)

// PaymentRepository in-memory журнал платежей
type PaymentRepository struct {
	store *Store
}

// Payments returns the payment repository
func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{store: s}
}

func (r *PaymentRepository) Record(ctx context.Context, p *domain.Payment) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.data.payments {
		if existing.SessionID == p.SessionID {
			return false, nil
		}
	}
	now := r.store.Now()
	p.ID = r.store.id()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.store.data.payments[p.ID] = *p
	return true, nil
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	return r.find(func(p *domain.Payment) bool { return p.SessionID == sessionID })
}

func (r *PaymentRepository) GetByReservationID(ctx context.Context, reservationID int64) (*domain.Payment, error) {
	return r.find(func(p *domain.Payment) bool {
		return p.ReservationID != nil && *p.ReservationID == reservationID
	})
}

func (r *PaymentRepository) LinkReservation(ctx context.Context, paymentID, reservationID int64) error {
	return r.mutate(paymentID, func(p *domain.Payment) { p.ReservationID = &reservationID })
}

func (r *PaymentRepository) LinkPass(ctx context.Context, paymentID, passInstanceID int64) error {
	return r.mutate(paymentID, func(p *domain.Payment) { p.PassInstanceID = &passInstanceID })
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error {
	return r.mutate(paymentID, func(p *domain.Payment) { p.Status = status })
}

func (r *PaymentRepository) find(match func(p *domain.Payment) bool) (*domain.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.data.payments {
		p := p
		if match(&p) {
			return &p, nil
		}
	}
	return nil, paymentRepo.ErrPaymentNotFound
}

func (r *PaymentRepository) mutate(id int64, fn func(p *domain.Payment)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.data.payments[id]
	if !ok {
		return paymentRepo.ErrPaymentNotFound
	}
	fn(&p)
	p.UpdatedAt = r.store.Now()
	r.store.data.payments[id] = p
	return nil
}
