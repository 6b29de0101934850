package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	outboxRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/outbox"
)

// OutboxRepository in-memory очередь задач
type OutboxRepository struct {
	store *Store
}

// Outbox returns the outbox repository
func (s *Store) Outbox() *OutboxRepository {
	return &OutboxRepository{store: s}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, task *domain.OutboxTask) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.data.tasks[task.ID] = *task
	r.store.data.taskOrder = append(r.store.data.taskOrder, task.ID)
	return nil
}

func (r *OutboxRepository) Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*domain.OutboxTask, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.OutboxTask, 0, limit)
	for _, id := range r.store.data.taskOrder {
		if len(out) >= limit {
			break
		}
		t := r.store.data.tasks[id]
		if (t.State != domain.TaskNew && t.State != domain.TaskFailed) || t.NextAttemptAt.After(now) {
			continue
		}
		t.NextAttemptAt = now.Add(lease)
		r.store.data.tasks[id] = t
		claimed := t
		out = append(out, &claimed)
	}
	return out, nil
}

func (r *OutboxRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	return r.mutate(id, func(t *domain.OutboxTask) {
		t.State = domain.TaskDone
		t.Attempts++
		t.LastError = nil
	})
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastError string, dead bool) error {
	return r.mutate(id, func(t *domain.OutboxTask) {
		t.State = domain.TaskFailed
		if dead {
			t.State = domain.TaskDead
		}
		t.Attempts++
		t.NextAttemptAt = nextAttemptAt
		t.LastError = &lastError
	})
}

func (r *OutboxRepository) mutate(id uuid.UUID, fn func(t *domain.OutboxTask)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.data.tasks[id]
	if !ok {
		return outboxRepo.ErrTaskNotFound
	}
	fn(&t)
	r.store.data.tasks[id] = t
	return nil
}
