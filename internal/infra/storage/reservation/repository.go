package reservation

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
	"reservation_date",
	"time_slot_id",
	"offering_type_id",
	"resource_cost",
	"payment_method",
	"pass_instance_id",
	"price_paid_cents",
	"state",
	"access_code",
	"access_code_external_id",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Проверка вместимости выполняется вызывающей стороной в той же транзакции
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"customer_id",
			"customer_email",
			"reservation_date",
			"time_slot_id",
			"offering_type_id",
			"resource_cost",
			"payment_method",
			"pass_instance_id",
			"price_paid_cents",
			"state",
		).
		Values(
			res.CustomerID,
			res.CustomerEmail,
			domain.DateOnly(res.Date),
			res.TimeSlotID,
			res.OfferingTypeID,
			res.ResourceCost,
			res.PaymentMethod,
			res.PassInstanceID,
			res.PricePaidCents,
			res.State,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return res, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("reservations").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// ListByCustomer возвращает бронирования клиента, новые первыми
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("reservations").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("reservation_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// SumActiveResourceCost сумма resourceCost активных бронирований слота на дату
func (r *Repository) SumActiveResourceCost(ctx context.Context, date time.Time, timeSlotID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(SUM(resource_cost), 0)").
		From("reservations").
		Where(squirrel.Eq{
			"reservation_date": domain.DateOnly(date),
			"time_slot_id":     timeSlotID,
			"state":            activeStates(),
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: SumActiveResourceCost - build select query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: SumActiveResourceCost - scan sum: %w", ErrScanRow, err)
	}

	return total, nil
}

// ReservedBaysByDate занятые места по слотам на дату: time_slot_id -> сумма resourceCost
func (r *Repository) ReservedBaysByDate(ctx context.Context, date time.Time) (map[int64]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("time_slot_id", "SUM(resource_cost)").
		From("reservations").
		Where(squirrel.Eq{
			"reservation_date": domain.DateOnly(date),
			"state":            activeStates(),
		}).
		GroupBy("time_slot_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ReservedBaysByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ReservedBaysByDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	reserved := make(map[int64]int)
	for rows.Next() {
		var slotID int64
		var bays int
		if err := rows.Scan(&slotID, &bays); err != nil {
			return nil, fmt.Errorf("%w: ReservedBaysByDate - scan row: %w", ErrScanRow, err)
		}
		reserved[slotID] = bays
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ReservedBaysByDate - rows error: %w", ErrScanRow, err)
	}

	return reserved, nil
}

// UpdateState меняет состояние бронирования
func (r *Repository) UpdateState(ctx context.Context, id int64, state domain.ReservationState) error {
	builder := psqlbuilder.Update("reservations").
		Set("state", state).
		Set("updated_at", squirrel.Expr("NOW()"))
	if state == domain.ReservationCancelled {
		builder = builder.Set("cancelled_at", squirrel.Expr("NOW()"))
	}

	return r.execUpdate(ctx, "UpdateState", builder.Where(squirrel.Eq{"id": id}))
}

// SetAccessCode сохраняет выданный код двери
func (r *Repository) SetAccessCode(ctx context.Context, id int64, code, externalID string) error {
	builder := psqlbuilder.Update("reservations").
		Set("access_code", code).
		Set("access_code_external_id", externalID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "SetAccessCode", builder)
}

// ClearAccessCode удаляет код двери после отзыва
func (r *Repository) ClearAccessCode(ctx context.Context, id int64) error {
	builder := psqlbuilder.Update("reservations").
		Set("access_code", nil).
		Set("access_code_external_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "ClearAccessCode", builder)
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
		return ErrReservationNotFound
	}

	return nil
}

func activeStates() []string {
	states := make([]string, len(domain.ActiveReservationStates))
	for i, s := range domain.ActiveReservationStates {
		states[i] = string(s)
	}
	return states
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.CustomerID,
		&res.CustomerEmail,
		&res.Date,
		&res.TimeSlotID,
		&res.OfferingTypeID,
		&res.ResourceCost,
		&res.PaymentMethod,
		&res.PassInstanceID,
		&res.PricePaidCents,
		&res.State,
		&res.AccessCode,
		&res.AccessCodeExternalID,
		&res.CancelledAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}
