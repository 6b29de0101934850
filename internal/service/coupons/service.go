package coupons

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	couponRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/coupon"
	"github.com/m04kA/SMC-StudioBooking/internal/service/coupons/models"
)

// Service проверка и погашение купонов
type Service struct {
	couponRepo   CouponRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса купонов
func NewService(couponRepo CouponRepository, logger Logger) *Service {
	return NewServiceWithTime(couponRepo, &RealTimeProvider{}, logger)
}

// NewServiceWithTime как NewService, но с заданным источником времени
func NewServiceWithTime(couponRepo CouponRepository, timeProvider TimeProvider, logger Logger) *Service {
	return &Service{
		couponRepo:   couponRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Validate единственная серверная проверка купона и расчёт итоговой цены
// Непригодный купон не ошибка: возвращается Valid=false и код причины
func (s *Service) Validate(ctx context.Context, req *models.ValidateRequest) (*models.ValidationResult, error) {
	code := domain.NormalizeCouponCode(req.Code)
	if code == "" || len(code) > domain.MaxCouponCodeLen {
		return nil, ErrInvalidInput
	}

	rejected := func(err error) (*models.ValidationResult, error) {
		reason, ok := models.ReasonFor(err)
		if !ok {
			return nil, fmt.Errorf("%w: Validate - unexpected rejection: %w", ErrInternal, err)
		}
		s.logger.Info("Validate: coupon=%s rejected for customer=%s: %s", code, req.CustomerID, reason)
		return &models.ValidationResult{Valid: false, FinalPriceCents: req.BasePriceCents, Reason: reason}, nil
	}

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, couponRepo.ErrCouponNotFound) {
			return rejected(domain.ErrCouponNotFound)
		}
		s.logger.Error("Validate: get coupon=%s: %v", code, err)
		return nil, fmt.Errorf("%w: Validate - get coupon: %w", ErrInternal, err)
	}

	usage, err := s.couponRepo.CountRedemptions(ctx, coupon.ID, req.CustomerID)
	if err != nil {
		s.logger.Error("Validate: count redemptions coupon id=%d: %v", coupon.ID, err)
		return nil, fmt.Errorf("%w: Validate - count redemptions: %w", ErrInternal, err)
	}

	if err := coupon.Check(req.ItemType, req.ItemID, usage, s.timeProvider.Now()); err != nil {
		return rejected(err)
	}

	couponID := coupon.ID
	final := coupon.Apply(req.BasePriceCents)
	s.logger.Info("Validate: coupon=%s valid for customer=%s, %d -> %d cents", code, req.CustomerID, req.BasePriceCents, final)

	return &models.ValidationResult{
		Valid:           true,
		FinalPriceCents: final,
		CouponID:        &couponID,
	}, nil
}

// Redeem записывает погашение купона, вызывается в транзакции обработки платежа
func (s *Service) Redeem(ctx context.Context, req *models.RedeemRequest) error {
	coupon, err := s.couponRepo.GetByID(ctx, req.CouponID)
	if err != nil {
		if errors.Is(err, couponRepo.ErrCouponNotFound) {
			s.logger.Warn("Redeem: coupon id=%d from payment=%d no longer exists", req.CouponID, req.PaymentID)
			return nil
		}
		return fmt.Errorf("%w: Redeem - lock coupon: %w", ErrInternal, err)
	}

	// Повторная проверка под блокировкой купона: параллельные оплаты могли
	// исчерпать лимит после Validate. Оплата уже прошла, поэтому погашение
	// всё равно записывается
	usage, err := s.couponRepo.CountRedemptions(ctx, coupon.ID, req.CustomerID)
	if err != nil {
		s.logger.Error("Redeem: count redemptions coupon id=%d: %v", coupon.ID, err)
		return fmt.Errorf("%w: Redeem - count redemptions: %w", ErrInternal, err)
	}
	switch err := coupon.Check(req.ItemType, req.ItemID, usage, s.timeProvider.Now()); {
	case errors.Is(err, domain.ErrCouponAlreadyUsed), errors.Is(err, domain.ErrCouponExhausted):
		s.logger.Warn("Redeem: coupon=%s over limit for customer=%s, payment=%d (total=%d, customer=%d): %v",
			coupon.Code, req.CustomerID, req.PaymentID, usage.Total, usage.PerCustomer, err)
	case err != nil:
		s.logger.Info("Redeem: coupon=%s no longer applies for payment=%d: %v", coupon.Code, req.PaymentID, err)
	}

	redemption := &domain.CouponRedemption{
		CouponID:   req.CouponID,
		CustomerID: req.CustomerID,
		ItemType:   req.ItemType,
		ItemID:     req.ItemID,
		PaymentID:  req.PaymentID,
	}
	if err := s.couponRepo.CreateRedemption(ctx, redemption); err != nil {
		s.logger.Error("Redeem: coupon id=%d, payment=%d: %v", req.CouponID, req.PaymentID, err)
		return fmt.Errorf("%w: Redeem - create redemption: %w", ErrInternal, err)
	}

	s.logger.Info("Redeem: coupon id=%d redeemed by customer=%s for %s id=%d",
		req.CouponID, req.CustomerID, req.ItemType, req.ItemID)
	return nil
}
