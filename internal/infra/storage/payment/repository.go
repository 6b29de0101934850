package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"session_id",
	"payment_intent_id",
	"customer_id",
	"item_type",
	"item_id",
	"amount_cents",
	"currency",
	"status",
	"reservation_id",
	"pass_instance_id",
	"coupon_id",
	"created_at",
	"updated_at",
}

// Repository журнал платежей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Record вставляет платёж, если сессия ещё не встречалась
// Возвращает false без ошибки, если запись с таким session_id уже есть
func (r *Repository) Record(ctx context.Context, p *domain.Payment) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"session_id",
			"payment_intent_id",
			"customer_id",
			"item_type",
			"item_id",
			"amount_cents",
			"currency",
			"status",
			"coupon_id",
		).
		Values(
			p.SessionID,
			p.PaymentIntentID,
			p.CustomerID,
			p.ItemType,
			p.ItemID,
			p.AmountCents,
			p.Currency,
			p.Status,
			p.CouponID,
		).
		Suffix("ON CONFLICT (session_id) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Record - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: Record - execute insert: %w", ErrExecQuery, err)
	}

	return true, nil
}

// GetBySessionID получает платёж по идентификатору платёжной сессии
func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	return r.getOne(ctx, "GetBySessionID", squirrel.Eq{"session_id": sessionID})
}

// GetByReservationID получает платёж, которым оплачено бронирование
func (r *Repository) GetByReservationID(ctx context.Context, reservationID int64) (*domain.Payment, error) {
	return r.getOne(ctx, "GetByReservationID", squirrel.Eq{"reservation_id": reservationID})
}

// LinkReservation привязывает созданное бронирование к платежу
func (r *Repository) LinkReservation(ctx context.Context, paymentID, reservationID int64) error {
	return r.update(ctx, "LinkReservation", paymentID, map[string]interface{}{"reservation_id": reservationID})
}

// LinkPass привязывает выданный абонемент к платежу
func (r *Repository) LinkPass(ctx context.Context, paymentID, passInstanceID int64) error {
	return r.update(ctx, "LinkPass", paymentID, map[string]interface{}{"pass_instance_id": passInstanceID})
}

// UpdateStatus меняет статус платежа
func (r *Repository) UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error {
	return r.update(ctx, "UpdateStatus", paymentID, map[string]interface{}{"status": status})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("payments").
		Where(where).
		OrderBy("id DESC").
		Limit(1)
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var p domain.Payment
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.SessionID,
		&p.PaymentIntentID,
		&p.CustomerID,
		&p.ItemType,
		&p.ItemID,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&p.ReservationID,
		&p.PassInstanceID,
		&p.CouponID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan payment: %w", ErrScanRow, op, err)
	}

	return &p, nil
}

func (r *Repository) update(ctx context.Context, op string, paymentID int64, values map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		SetMap(values).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": paymentID}).
		ToSql()
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
		return ErrPaymentNotFound
	}

	return nil
}
