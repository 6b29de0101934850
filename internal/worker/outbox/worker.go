// Package outbox выполняет побочные эффекты, записанные в outbox_tasks,
// с повторами по расписанию backoff.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const (
	resultDone  = "done"
	resultRetry = "retry"
	resultDead  = "dead"
)

// Config параметры воркера
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Backoff      []time.Duration
	// Lease время, на которое задача скрывается от других воркеров
	Lease time.Duration
}

// Worker разбирает очередь задач outbox
type Worker struct {
	tasks        TaskRepository
	access       AccessProvisioner
	refunds      Refunder
	notifier     Notifier
	metrics      Metrics
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

// NewWorker создает новый воркер с реальным временем
func NewWorker(
	tasks TaskRepository,
	access AccessProvisioner,
	refunds Refunder,
	notifier Notifier,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *Worker {
	return NewWorkerWithTime(tasks, access, refunds, notifier, metrics, cfg, &RealTimeProvider{}, logger)
}

// NewWorkerWithTime создает воркер с заданным провайдером времени (для тестирования)
func NewWorkerWithTime(
	tasks TaskRepository,
	access AccessProvisioner,
	refunds Refunder,
	notifier Notifier,
	metrics Metrics,
	cfg Config,
	timeProvider TimeProvider,
	logger Logger,
) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.Lease <= 0 {
		cfg.Lease = time.Minute
	}
	return &Worker{
		tasks:        tasks,
		access:       access,
		refunds:      refunds,
		notifier:     notifier,
		metrics:      metrics,
		cfg:          cfg,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Run опрашивает очередь до отмены контекста
func (w *Worker) Run(ctx context.Context) error {
	if w.tasks == nil || w.access == nil || w.refunds == nil || w.notifier == nil {
		return ErrNotConfigured
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logger.Info("Outbox worker started: poll=%s, batch=%d", w.cfg.PollInterval, w.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Outbox worker stopped")
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Outbox worker: batch failed: %v", err)
			}
		}
	}
}

// RunOnce обрабатывает одну пачку готовых задач и возвращает их число
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	batch, err := w.tasks.Claim(ctx, w.timeProvider.Now(), w.cfg.Lease, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	for _, task := range batch {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		w.process(ctx, task)
	}
	return len(batch), nil
}

func (w *Worker) process(ctx context.Context, task *domain.OutboxTask) {
	err := w.dispatch(ctx, task)
	if err == nil {
		if markErr := w.tasks.MarkDone(ctx, task.ID); markErr != nil {
			w.logger.Error("Outbox: mark done task=%s (%s): %v", task.ID, task.Kind, markErr)
			return
		}
		w.metrics.OutboxTask(string(task.Kind), resultDone)
		return
	}

	attempt := task.Attempts + 1
	dead := attempt >= w.cfg.MaxAttempts || errors.Is(err, ErrBadPayload) || errors.Is(err, ErrUnknownKind)
	next := w.nextRetry(task.Attempts)

	if markErr := w.tasks.MarkFailed(ctx, task.ID, next, err.Error(), dead); markErr != nil {
		w.logger.Error("Outbox: mark failed task=%s (%s): %v", task.ID, task.Kind, markErr)
		return
	}

	if !dead {
		w.metrics.OutboxTask(string(task.Kind), resultRetry)
		w.logger.Warn("Outbox: task=%s (%s) attempt %d failed, retry at %s: %v",
			task.ID, task.Kind, attempt, next.Format(time.RFC3339), err)
		return
	}

	w.metrics.OutboxTask(string(task.Kind), resultDead)
	w.logger.Error("Outbox: task=%s (%s) is dead after %d attempts, payload=%s: %v",
		task.ID, task.Kind, attempt, string(task.Payload), err)
	w.onDead(ctx, task)
}

// dispatch выполняет эффект задачи по её виду
func (w *Worker) dispatch(ctx context.Context, task *domain.OutboxTask) error {
	switch task.Kind {
	case domain.TaskProvisionAccess:
		var p domain.ReservationTaskPayload
		if err := decode(task, &p); err != nil {
			return err
		}
		_, err := w.access.Provision(ctx, p.ReservationID)
		return err

	case domain.TaskRevokeAccess:
		var p domain.ReservationTaskPayload
		if err := decode(task, &p); err != nil {
			return err
		}
		return w.access.Revoke(ctx, p.ReservationID)

	case domain.TaskRefundPayment:
		var p domain.RefundTaskPayload
		if err := decode(task, &p); err != nil {
			return err
		}
		return w.refunds.Refund(ctx, p)

	case domain.TaskNotifyReservation:
		var p domain.ReservationTaskPayload
		if err := decode(task, &p); err != nil {
			return err
		}
		return w.notifier.NotifyReservation(ctx, p.ReservationID, p.Reason)

	case domain.TaskNotifyPass:
		var p domain.PassTaskPayload
		if err := decode(task, &p); err != nil {
			return err
		}
		return w.notifier.NotifyPass(ctx, p.PassInstanceID, p.AmountCents)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, task.Kind)
	}
}

// onDead ставит письмо без кода, если выдать доступ так и не удалось
func (w *Worker) onDead(ctx context.Context, task *domain.OutboxTask) {
	if task.Kind != domain.TaskProvisionAccess {
		return
	}

	var p domain.ReservationTaskPayload
	if err := task.Decode(&p); err != nil {
		return
	}
	notify, err := domain.NewOutboxTask(domain.TaskNotifyReservation, domain.ReservationTaskPayload{
		ReservationID: p.ReservationID,
		Reason:        domain.NotifyConfirmed,
	}, w.timeProvider.Now())
	if err != nil {
		w.logger.Error("Outbox: build notify for reservation id=%d: %v", p.ReservationID, err)
		return
	}
	if err := w.tasks.Enqueue(ctx, notify); err != nil {
		w.logger.Error("Outbox: enqueue notify for reservation id=%d: %v", p.ReservationID, err)
	}
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := w.timeProvider.Now()
	if attempts < len(w.cfg.Backoff) {
		return now.Add(w.cfg.Backoff[attempts])
	}
	if len(w.cfg.Backoff) > 0 {
		return now.Add(w.cfg.Backoff[len(w.cfg.Backoff)-1])
	}
	return now.Add(5 * time.Second)
}

func decode(task *domain.OutboxTask, dst interface{}) error {
	if err := task.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
