package pass

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"customer_id",
	"customer_email",
	"pass_type_id",
	"classes_remaining",
	"classes_total",
	"activated_at",
	"expires_at",
	"state",
	"created_at",
	"updated_at",
}

// Repository репозиторий купленных абонементов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория абонементов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый абонемент
func (r *Repository) Create(ctx context.Context, p *domain.PassInstance) (*domain.PassInstance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("pass_instances").
		Columns("customer_id", "customer_email", "pass_type_id", "classes_remaining", "classes_total", "activated_at", "expires_at", "state").
		Values(p.CustomerID, p.CustomerEmail, p.PassTypeID, p.ClassesRemaining, p.ClassesTotal, p.ActivatedAt, p.ExpiresAt, p.State).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return p, nil
}

// GetByID получает абонемент по ID, внутри транзакции с блокировкой строки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PassInstance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("pass_instances").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPass(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPassNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan pass: %w", ErrScanRow, err)
	}

	return p, nil
}

// ListByCustomer возвращает все абонементы клиента
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.PassInstance, error) {
	builder := psqlbuilder.Select(columns...).
		From("pass_instances").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC", "id DESC")

	return r.list(ctx, "ListByCustomer", builder)
}

// ListRedeemable абонементы клиента, с которых можно списать занятие на момент now
// Порядок: раньше истекающие, затем неактивированные, при равенстве меньший id
func (r *Repository) ListRedeemable(ctx context.Context, customerID uuid.UUID, now time.Time) ([]*domain.PassInstance, error) {
	builder := psqlbuilder.Select(columns...).
		From("pass_instances").
		Where(squirrel.Eq{"customer_id": customerID, "state": string(domain.PassActive)}).
		Where(squirrel.Gt{"classes_remaining": 0}).
		Where(squirrel.Or{
			squirrel.Eq{"expires_at": nil},
			squirrel.GtOrEq{"expires_at": now},
		}).
		OrderBy("expires_at ASC NULLS LAST", "id ASC")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	return r.list(ctx, "ListRedeemable", builder)
}

// Update сохраняет счётчик, даты активации и состояние
func (r *Repository) Update(ctx context.Context, p *domain.PassInstance) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("pass_instances").
		Set("classes_remaining", p.ClassesRemaining).
		Set("activated_at", p.ActivatedAt).
		Set("expires_at", p.ExpiresAt).
		Set("state", p.State).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrPassNotFound
	}

	return nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.PassInstance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	passes := make([]*domain.PassInstance, 0)
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return passes, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPass(row rowScanner) (*domain.PassInstance, error) {
	var p domain.PassInstance
	err := row.Scan(
		&p.ID,
		&p.CustomerID,
		&p.CustomerEmail,
		&p.PassTypeID,
		&p.ClassesRemaining,
		&p.ClassesTotal,
		&p.ActivatedAt,
		&p.ExpiresAt,
		&p.State,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
