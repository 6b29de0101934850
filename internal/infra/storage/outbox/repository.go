package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

// Repository хранилище задач outbox
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Enqueue сохраняет задачу; вызывается в транзакции основного изменения
func (r *Repository) Enqueue(ctx context.Context, task *domain.OutboxTask) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// jsonb принимает текст, []byte lib/pq кодирует как bytea
	query, args, err := psqlbuilder.Insert("outbox_tasks").
		Columns("id", "kind", "payload", "state", "attempts", "next_attempt_at", "created_at").
		Values(task.ID, task.Kind, string(task.Payload), task.State, task.Attempts, task.NextAttemptAt, task.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Enqueue - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Enqueue - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// Claim забирает до limit готовых задач и сдвигает их next_attempt_at на lease,
// чтобы параллельный воркер не взял их повторно
func (r *Repository) Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*domain.OutboxTask, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	due, dueArgs, err := squirrel.Select("id").
		From("outbox_tasks").
		Where(squirrel.Eq{"state": []string{string(domain.TaskNew), string(domain.TaskFailed)}}).
		Where(squirrel.LtOrEq{"next_attempt_at": now}).
		OrderBy("next_attempt_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Claim - build due query: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Update("outbox_tasks").
		Set("next_attempt_at", now.Add(lease)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id IN ("+due+")", dueArgs...).
		Suffix("RETURNING id, kind, payload, state, attempts, next_attempt_at, last_error, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Claim - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Claim - execute update: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	tasks := make([]*domain.OutboxTask, 0, limit)
	for rows.Next() {
		var task domain.OutboxTask
		var payload []byte
		err := rows.Scan(
			&task.ID,
			&task.Kind,
			&payload,
			&task.State,
			&task.Attempts,
			&task.NextAttemptAt,
			&task.LastError,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: Claim - scan row: %w", ErrScanRow, err)
		}
		task.Payload = payload
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Claim - rows error: %w", ErrScanRow, err)
	}

	return tasks, nil
}

// MarkDone помечает задачу выполненной
func (r *Repository) MarkDone(ctx context.Context, id uuid.UUID) error {
	builder := psqlbuilder.Update("outbox_tasks").
		Set("state", domain.TaskDone).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "MarkDone", builder)
}

// MarkFailed фиксирует неудачную попытку
// dead=true переводит задачу в dead: повторов больше не будет
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastError string, dead bool) error {
	state := domain.TaskFailed
	if dead {
		state = domain.TaskDead
	}

	builder := psqlbuilder.Update("outbox_tasks").
		Set("state", state).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("next_attempt_at", nextAttemptAt).
		Set("last_error", lastError).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "MarkFailed", builder)
}

func (r *Repository) execUpdate(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
