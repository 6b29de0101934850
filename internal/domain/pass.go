package domain

import (
	"time"

	"github.com/google/uuid"
)

// PassState represents the state of a purchased pass
type PassState string

const (
	PassActive    PassState = "active"
	PassExhausted PassState = "exhausted"
	PassExpired   PassState = "expired"
)

// PassInstance купленный абонемент клиента
// ActivatedAt/ExpiresAt пусты до первого использования
type PassInstance struct {
	ID               int64
	CustomerID       uuid.UUID
	CustomerEmail    string
	PassTypeID       int64
	ClassesRemaining int
	ClassesTotal     int
	ActivatedAt      *time.Time
	ExpiresAt        *time.Time
	State            PassState
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewPassInstance создаёт неактивированный абонемент по шаблону
func NewPassInstance(customerID uuid.UUID, customerEmail string, passType *PassType) *PassInstance {
	return &PassInstance{
		CustomerID:       customerID,
		CustomerEmail:    customerEmail,
		PassTypeID:       passType.ID,
		ClassesRemaining: passType.ClassCount,
		ClassesTotal:     passType.ClassCount,
		State:            PassActive,
	}
}

// IsActivated returns true after the first redemption
func (p *PassInstance) IsActivated() bool {
	return p.ActivatedAt != nil
}

// IsExpired returns true if the pass was activated and its validity ended
func (p *PassInstance) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// StateAt возвращает фактическое состояние с учётом срока действия
func (p *PassInstance) StateAt(now time.Time) PassState {
	if p.IsExpired(now) {
		return PassExpired
	}
	return p.State
}

// CanRedeem returns true if a class can be debited at the given moment
func (p *PassInstance) CanRedeem(now time.Time) bool {
	return p.State == PassActive && p.ClassesRemaining > 0 && !p.IsExpired(now)
}

// Debit списывает одно занятие
// Первое списание активирует абонемент: срок отсчитывается от now
func (p *PassInstance) Debit(now time.Time, validity time.Duration) error {
	if p.ClassesRemaining <= 0 || p.IsExpired(now) || p.State == PassExpired {
		return ErrEntitlementExhausted
	}

	if p.ActivatedAt == nil {
		activated := now
		expires := now.Add(validity)
		p.ActivatedAt = &activated
		p.ExpiresAt = &expires
	}

	p.ClassesRemaining--
	if p.ClassesRemaining == 0 {
		p.State = PassExhausted
	}
	return nil
}

// Credit возвращает одно занятие после отмены
// Срок действия не продлевается и истёкший абонемент не оживает
func (p *PassInstance) Credit() {
	if p.ClassesRemaining < p.ClassesTotal {
		p.ClassesRemaining++
	}
	if p.State == PassExhausted && p.ClassesRemaining > 0 {
		p.State = PassActive
	}
}

// ExpiresBefore порядок выбора абонемента: раньше истекающие первыми,
// неактивированные после активированных, при равенстве меньший id
func (p *PassInstance) ExpiresBefore(other *PassInstance) bool {
	switch {
	case p.ExpiresAt != nil && other.ExpiresAt == nil:
		return true
	case p.ExpiresAt == nil && other.ExpiresAt != nil:
		return false
	case p.ExpiresAt != nil && other.ExpiresAt != nil && !p.ExpiresAt.Equal(*other.ExpiresAt):
		return p.ExpiresAt.Before(*other.ExpiresAt)
	default:
		return p.ID < other.ID
	}
}
