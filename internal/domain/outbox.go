package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskKind вид отложенного побочного эффекта
type TaskKind string

const (
	TaskProvisionAccess   TaskKind = "provision_access"
	TaskRevokeAccess      TaskKind = "revoke_access"
	TaskRefundPayment     TaskKind = "refund_payment"
	TaskNotifyReservation TaskKind = "notify_reservation"
	TaskNotifyPass        TaskKind = "notify_pass"
)

// TaskState состояние задачи outbox
type TaskState string

const (
	TaskNew    TaskState = "new"
	TaskFailed TaskState = "failed"
	TaskDone   TaskState = "done"
	TaskDead   TaskState = "dead"
)

// OutboxTask задача, записанная в той же транзакции, что и основное изменение
type OutboxTask struct {
	ID            uuid.UUID
	Kind          TaskKind
	Payload       json.RawMessage
	State         TaskState
	Attempts      int
	NextAttemptAt time.Time
	LastError     *string
	CreatedAt     time.Time
}

// NewOutboxTask сериализует payload в новую задачу
func NewOutboxTask(kind TaskKind, payload interface{}, now time.Time) (*OutboxTask, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &OutboxTask{
		ID:            uuid.New(),
		Kind:          kind,
		Payload:       raw,
		State:         TaskNew,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}

// Decode распаковывает payload задачи
func (t *OutboxTask) Decode(dst interface{}) error {
	if err := json.Unmarshal(t.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Kind, err)
	}
	return nil
}

// ReservationTaskPayload payload для provision_access, revoke_access и notify_reservation
type ReservationTaskPayload struct {
	ReservationID int64  `json:"reservation_id"`
	Reason        string `json:"reason,omitempty"`
}

// RefundTaskPayload payload для refund_payment
type RefundTaskPayload struct {
	PaymentID       int64  `json:"payment_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	AmountCents     int64  `json:"amount_cents"`
	Reason          string `json:"reason"`
}

// PassTaskPayload payload для notify_pass
type PassTaskPayload struct {
	PassInstanceID int64 `json:"pass_instance_id"`
	AmountCents    int64 `json:"amount_cents"`
}

// Refund reasons
const (
	RefundReasonCapacity     = "capacity_exceeded"
	RefundReasonUnavailable  = "item_unavailable"
	RefundReasonCancellation = "customer_cancellation"
)

// Notification reasons
const (
	NotifyConfirmed = "confirmed"
	NotifyCancelled = "cancelled"
)
