package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type recorder struct {
	provisioned []int64
	revoked     []int64
	refunded    []int64
	notified    []string
	passes      []int64

	provisionErr error
}

func (r *recorder) Provision(_ context.Context, id int64) (*domain.AccessGrant, error) {
	if r.provisionErr != nil {
		return nil, r.provisionErr
	}
	r.provisioned = append(r.provisioned, id)
	return &domain.AccessGrant{Code: "123456"}, nil
}

func (r *recorder) Revoke(_ context.Context, id int64) error {
	r.revoked = append(r.revoked, id)
	return nil
}

func (r *recorder) Refund(_ context.Context, p domain.RefundTaskPayload) error {
	r.refunded = append(r.refunded, p.PaymentID)
	return nil
}

func (r *recorder) NotifyReservation(_ context.Context, id int64, reason string) error {
	r.notified = append(r.notified, reason)
	return nil
}

func (r *recorder) NotifyPass(_ context.Context, id int64, amount int64) error {
	r.passes = append(r.passes, id)
	return nil
}

func newWorker(t *testing.T, store *memory.Store, rec *recorder, c *clock) *Worker {
	t.Helper()
	cfg := Config{
		BatchSize:   10,
		MaxAttempts: 2,
		Backoff:     []time.Duration{time.Minute, 10 * time.Minute},
		Lease:       30 * time.Second,
	}
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	return NewWorkerWithTime(store.Outbox(), rec, rec, rec, m, cfg, c, logger.NewNop())
}

func enqueue(t *testing.T, store *memory.Store, kind domain.TaskKind, payload interface{}, now time.Time) {
	t.Helper()
	task, err := domain.NewOutboxTask(kind, payload, now)
	require.NoError(t, err)
	require.NoError(t, store.Outbox().Enqueue(context.Background(), task))
}

func TestWorker_DispatchesEveryKind(t *testing.T) {
	store := memory.NewStore()
	c := &clock{now: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	w := newWorker(t, store, rec, c)

	enqueue(t, store, domain.TaskProvisionAccess, domain.ReservationTaskPayload{ReservationID: 1}, c.now)
	enqueue(t, store, domain.TaskRevokeAccess, domain.ReservationTaskPayload{ReservationID: 2}, c.now)
	enqueue(t, store, domain.TaskRefundPayment, domain.RefundTaskPayload{PaymentID: 3, PaymentIntentID: "pi_3"}, c.now)
	enqueue(t, store, domain.TaskNotifyReservation, domain.ReservationTaskPayload{ReservationID: 4, Reason: domain.NotifyCancelled}, c.now)
	enqueue(t, store, domain.TaskNotifyPass, domain.PassTaskPayload{PassInstanceID: 5, AmountCents: 4500}, c.now)

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, []int64{1}, rec.provisioned)
	assert.Equal(t, []int64{2}, rec.revoked)
	assert.Equal(t, []int64{3}, rec.refunded)
	assert.Equal(t, []string{domain.NotifyCancelled}, rec.notified)
	assert.Equal(t, []int64{5}, rec.passes)

	for _, kind := range []domain.TaskKind{
		domain.TaskProvisionAccess, domain.TaskRevokeAccess, domain.TaskRefundPayment,
		domain.TaskNotifyReservation, domain.TaskNotifyPass,
	} {
		tasks := store.TasksOfKind(kind)
		require.Len(t, tasks, 1, kind)
		assert.Equal(t, domain.TaskDone, tasks[0].State, kind)
		assert.Equal(t, 1, tasks[0].Attempts, kind)
	}

	n, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWorker_RetryThenDead(t *testing.T) {
	store := memory.NewStore()
	c := &clock{now: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)}
	rec := &recorder{provisionErr: errors.New("lock offline")}
	w := newWorker(t, store, rec, c)
	ctx := context.Background()

	enqueue(t, store, domain.TaskProvisionAccess, domain.ReservationTaskPayload{ReservationID: 9}, c.now)

	_, err := w.RunOnce(ctx)
	require.NoError(t, err)

	task := store.TasksOfKind(domain.TaskProvisionAccess)[0]
	assert.Equal(t, domain.TaskFailed, task.State)
	assert.Equal(t, 1, task.Attempts)
	assert.Equal(t, c.now.Add(time.Minute), task.NextAttemptAt)
	require.NotNil(t, task.LastError)
	assert.Contains(t, *task.LastError, "lock offline")

	// до срока повтора задача не выдаётся
	n, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.TasksOfKind(domain.TaskNotifyReservation))

	c.now = c.now.Add(time.Minute)
	n, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	task = store.TasksOfKind(domain.TaskProvisionAccess)[0]
	assert.Equal(t, domain.TaskDead, task.State)
	assert.Equal(t, 2, task.Attempts)

	// письмо без кода всё равно уходит клиенту
	notify := store.TasksOfKind(domain.TaskNotifyReservation)
	require.Len(t, notify, 1)
	var p domain.ReservationTaskPayload
	require.NoError(t, json.Unmarshal(notify[0].Payload, &p))
	assert.Equal(t, int64(9), p.ReservationID)
	assert.Equal(t, domain.NotifyConfirmed, p.Reason)
}

func TestWorker_MalformedTasksDieImmediately(t *testing.T) {
	store := memory.NewStore()
	c := &clock{now: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	w := newWorker(t, store, rec, c)

	unknown, err := domain.NewOutboxTask("teleport", map[string]int{"x": 1}, c.now)
	require.NoError(t, err)
	require.NoError(t, store.Outbox().Enqueue(context.Background(), unknown))

	broken, err := domain.NewOutboxTask(domain.TaskRefundPayment, "not an object", c.now)
	require.NoError(t, err)
	require.NoError(t, store.Outbox().Enqueue(context.Background(), broken))

	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.TaskDead, store.TasksOfKind("teleport")[0].State)
	assert.Equal(t, domain.TaskDead, store.TasksOfKind(domain.TaskRefundPayment)[0].State)
	assert.Empty(t, rec.refunded)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	c := &clock{now: time.Now()}
	w := newWorker(t, store, &recorder{}, c)
	w.cfg.PollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_RunRequiresHandlers(t *testing.T) {
	w := NewWorker(nil, nil, nil, nil, nil, Config{}, logger.NewNop())
	assert.ErrorIs(t, w.Run(context.Background()), ErrNotConfigured)
}
