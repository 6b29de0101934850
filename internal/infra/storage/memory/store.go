// Package memory хранит данные студии в памяти процесса.
// Используется в тестах сервисов и сценариев вместо PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

type txKey struct{}

// Store in-memory состояние всех агрегатов
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state

	Now func() time.Time
}

type state struct {
	offerings    map[int64]domain.OfferingType
	passTypes    map[int64]domain.PassType
	slots        map[int64]domain.TimeSlot
	reservations map[int64]domain.Reservation
	passes       map[int64]domain.PassInstance
	payments     map[int64]domain.Payment
	coupons      map[int64]domain.Coupon
	redemptions  []domain.CouponRedemption
	tasks        map[uuid.UUID]domain.OutboxTask
	taskOrder    []uuid.UUID
	nextID       int64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		data: &state{
			offerings:    make(map[int64]domain.OfferingType),
			passTypes:    make(map[int64]domain.PassType),
			slots:        make(map[int64]domain.TimeSlot),
			reservations: make(map[int64]domain.Reservation),
			passes:       make(map[int64]domain.PassInstance),
			payments:     make(map[int64]domain.Payment),
			coupons:      make(map[int64]domain.Coupon),
			tasks:        make(map[uuid.UUID]domain.OutboxTask),
		},
		Now: time.Now,
	}
}

func (s *state) clone() *state {
	c := &state{
		offerings:    make(map[int64]domain.OfferingType, len(s.offerings)),
		passTypes:    make(map[int64]domain.PassType, len(s.passTypes)),
		slots:        make(map[int64]domain.TimeSlot, len(s.slots)),
		reservations: make(map[int64]domain.Reservation, len(s.reservations)),
		passes:       make(map[int64]domain.PassInstance, len(s.passes)),
		payments:     make(map[int64]domain.Payment, len(s.payments)),
		coupons:      make(map[int64]domain.Coupon, len(s.coupons)),
		redemptions:  append([]domain.CouponRedemption(nil), s.redemptions...),
		tasks:        make(map[uuid.UUID]domain.OutboxTask, len(s.tasks)),
		taskOrder:    append([]uuid.UUID(nil), s.taskOrder...),
		nextID:       s.nextID,
	}
	for k, v := range s.offerings {
		c.offerings[k] = v
	}
	for k, v := range s.passTypes {
		c.passTypes[k] = v
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.passes {
		c.passes[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.coupons {
		c.coupons[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	return c
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

// TxManager сериализует транзакции и откатывает состояние при ошибке
type TxManager struct {
	store *Store
}

// TxManager returns a transaction manager bound to the store
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.DoSerializable(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	m.store.mu.Lock()
	snapshot := m.store.data.clone()
	m.store.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.mu.Lock()
		m.store.data = snapshot
		m.store.mu.Unlock()
		return err
	}
	return nil
}

// Seed helpers

// AddOffering добавляет услугу в каталог
func (s *Store) AddOffering(o domain.OfferingType) domain.OfferingType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	s.data.offerings[o.ID] = o
	return o
}

// AddPassType добавляет тип абонемента в каталог
func (s *Store) AddPassType(p domain.PassType) domain.PassType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.data.passTypes[p.ID] = p
	return p
}

// AddTimeSlot добавляет слот расписания
func (s *Store) AddTimeSlot(t domain.TimeSlot) domain.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.id()
	}
	s.data.slots[t.ID] = t
	return t
}

// AddCoupon добавляет купон
func (s *Store) AddCoupon(c domain.Coupon) domain.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.data.coupons[c.ID] = c
	return c
}

// Counts число записей по таблицам, для проверок в тестах
type Counts struct {
	Reservations int
	Passes       int
	Payments     int
	Redemptions  int
	Tasks        int
}

// Counts returns row counts
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Reservations: len(s.data.reservations),
		Passes:       len(s.data.passes),
		Payments:     len(s.data.payments),
		Redemptions:  len(s.data.redemptions),
		Tasks:        len(s.data.tasks),
	}
}

// TasksOfKind задачи outbox заданного вида в порядке постановки
func (s *Store) TasksOfKind(kind domain.TaskKind) []domain.OutboxTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OutboxTask, 0)
	for _, id := range s.data.taskOrder {
		if t := s.data.tasks[id]; t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}
