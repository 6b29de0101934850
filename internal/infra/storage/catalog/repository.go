package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

var (
	offeringColumns = []string{"id", "name", "resource_cost", "price_cents", "schedule", "active"}
	passTypeColumns = []string{"id", "name", "class_count", "validity_days", "price_cents", "schedule", "active"}
	slotColumns     = []string{"id", "day_of_week", "start_time", "end_time", "active"}
)

// Repository репозиторий каталога: услуги, абонементы и слоты
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListOfferings возвращает активные услуги
func (r *Repository) ListOfferings(ctx context.Context) ([]*domain.OfferingType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(offeringColumns...).
		From("offering_types").
		Where(squirrel.Eq{"active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOfferings - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOfferings - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	offerings := make([]*domain.OfferingType, 0)
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListOfferings - scan row: %w", ErrScanRow, err)
		}
		offerings = append(offerings, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOfferings - rows error: %w", ErrScanRow, err)
	}

	return offerings, nil
}

// GetOffering получает услугу по ID
func (r *Repository) GetOffering(ctx context.Context, id int64) (*domain.OfferingType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(offeringColumns...).
		From("offering_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOffering - build select query: %v", ErrBuildQuery, err)
	}

	o, err := scanOffering(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOffering - scan offering: %w", ErrScanRow, err)
	}

	return o, nil
}

// ListPassTypes возвращает активные типы абонементов
func (r *Repository) ListPassTypes(ctx context.Context) ([]*domain.PassType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(passTypeColumns...).
		From("pass_types").
		Where(squirrel.Eq{"active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListPassTypes - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPassTypes - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	passTypes := make([]*domain.PassType, 0)
	for rows.Next() {
		p, err := scanPassType(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPassTypes - scan row: %w", ErrScanRow, err)
		}
		passTypes = append(passTypes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPassTypes - rows error: %w", ErrScanRow, err)
	}

	return passTypes, nil
}

// GetPassType получает тип абонемента по ID
func (r *Repository) GetPassType(ctx context.Context, id int64) (*domain.PassType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(passTypeColumns...).
		From("pass_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetPassType - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPassType(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPassTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPassType - scan pass type: %w", ErrScanRow, err)
	}

	return p, nil
}

// ListTimeSlots возвращает недельное расписание активных слотов
func (r *Repository) ListTimeSlots(ctx context.Context) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"active": true}).
		OrderBy("day_of_week ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTimeSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTimeSlots - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListTimeSlots - scan row: %w", ErrScanRow, err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTimeSlots - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// ListTimeSlotsForDate возвращает активные слоты, повторяющиеся в день недели даты
func (r *Repository) ListTimeSlotsForDate(ctx context.Context, date time.Time) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"active": true, "day_of_week": int(date.Weekday())}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTimeSlotsForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTimeSlotsForDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListTimeSlotsForDate - scan row: %w", ErrScanRow, err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTimeSlotsForDate - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// GetTimeSlot получает слот по ID
// Внутри транзакции строка слота блокируется (FOR UPDATE): это сериализует
// проверку вместимости для конкурентных бронирований одного слота
func (r *Repository) GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeSlot - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeSlot - scan slot: %w", ErrScanRow, err)
	}

	return s, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffering(row rowScanner) (*domain.OfferingType, error) {
	var o domain.OfferingType
	if err := row.Scan(&o.ID, &o.Name, &o.ResourceCost, &o.PriceCents, &o.Schedule, &o.Active); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanPassType(row rowScanner) (*domain.PassType, error) {
	var p domain.PassType
	if err := row.Scan(&p.ID, &p.Name, &p.ClassCount, &p.ValidityDays, &p.PriceCents, &p.Schedule, &p.Active); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanSlot(row rowScanner) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	var dayOfWeek int
	if err := row.Scan(&s.ID, &dayOfWeek, &s.StartTime, &s.EndTime, &s.Active); err != nil {
		return nil, err
	}
	s.DayOfWeek = time.Weekday(dayOfWeek)
	return &s, nil
}
