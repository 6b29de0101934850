package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"code",
	"discount_type",
	"discount_value",
	"scope_item_type",
	"scope_item_id",
	"valid_from",
	"valid_until",
	"max_redemptions",
	"max_per_customer",
	"active",
}

// Repository репозиторий купонов и их погашений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория купонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode получает купон по нормализованному коду
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return r.getOne(ctx, "GetByCode", squirrel.Eq{"code": code})
}

// GetByID получает купон по ID, внутри транзакции с блокировкой строки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Coupon, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// CountRedemptions считает погашения купона: всего и конкретным клиентом
func (r *Repository) CountRedemptions(ctx context.Context, couponID int64, customerID uuid.UUID) (domain.CouponUsage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		Column("COUNT(*) FILTER (WHERE customer_id = ?)", customerID).
		From("coupon_redemptions").
		Where(squirrel.Eq{"coupon_id": couponID}).
		ToSql()
	if err != nil {
		return domain.CouponUsage{}, fmt.Errorf("%w: CountRedemptions - build select query: %v", ErrBuildQuery, err)
	}

	var usage domain.CouponUsage
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&usage.Total, &usage.PerCustomer); err != nil {
		return domain.CouponUsage{}, fmt.Errorf("%w: CountRedemptions - scan counts: %w", ErrScanRow, err)
	}

	return usage, nil
}

// CreateRedemption записывает погашение купона
func (r *Repository) CreateRedemption(ctx context.Context, red *domain.CouponRedemption) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("coupon_redemptions").
		Columns("coupon_id", "customer_id", "item_type", "item_id", "payment_id").
		Values(red.CouponID, red.CustomerID, red.ItemType, red.ItemID, red.PaymentID).
		Suffix("RETURNING id, redeemed_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateRedemption - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&red.ID, &red.RedeemedAt); err != nil {
		return fmt.Errorf("%w: CreateRedemption - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Coupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("coupons").
		Where(where)
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var c domain.Coupon
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.ScopeItemType,
		&c.ScopeItemID,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.MaxRedemptions,
		&c.MaxPerCustomer,
		&c.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan coupon: %w", ErrScanRow, op, err)
	}

	return &c, nil
}
