package create_checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/stripe"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/service/coupons"
	couponModels "github.com/m04kA/SMC-StudioBooking/internal/service/coupons/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

const (
	providerStripe = "stripe"

	// sessionPlaceholder подставляется провайдером в success URL
	sessionPlaceholder = "{CHECKOUT_SESSION_ID}"
)

// UseCase use case для открытия платёжной сессии
type UseCase struct {
	catalogRepo  CatalogRepository
	availability AvailabilityService
	coupons      CouponValidator
	payments     PaymentProvider
	metrics      Metrics
	cfg          Config
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	availability AvailabilityService,
	coupons CouponValidator,
	payments PaymentProvider,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}
	return &UseCase{
		catalogRepo:  catalogRepo,
		availability: availability,
		coupons:      coupons,
		payments:     payments,
		metrics:      metrics,
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute считает цену на сервере и открывает hosted checkout
// Всё, что нужно вебхуку для создания бронирования или абонемента, уходит в метаданные сессии
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateCheckout: customer=%s, item=%s/%d", req.CustomerID, req.ItemType, req.ItemID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateCheckout: validation failed: %v", err)
		return nil, err
	}

	// 2. Цена из каталога и намерение покупки
	productName, basePrice, intent, err := uc.resolveItem(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Купон
	finalPrice := basePrice
	var couponID *int64
	if code := strings.TrimSpace(ptr.Value(req.CouponCode)); code != "" {
		result, err := uc.coupons.Validate(ctx, &couponModels.ValidateRequest{
			Code:           code,
			CustomerID:     req.CustomerID,
			ItemType:       req.ItemType,
			ItemID:         req.ItemID,
			BasePriceCents: basePrice,
		})
		if err != nil {
			if errors.Is(err, coupons.ErrInvalidInput) {
				uc.logger.Warn("CreateCheckout: coupon %q is malformed", code)
				return nil, fmt.Errorf("%w: coupon code", ErrInvalidInput)
			}
			uc.logger.Error("CreateCheckout: coupon %q check failed: %v", code, err)
			return nil, fmt.Errorf("%w: coupon: %w", ErrInternal, err)
		}
		if !result.Valid {
			uc.logger.Warn("CreateCheckout: coupon %q rejected for customer=%s: %s", code, req.CustomerID, result.Reason)
			return nil, &CouponError{Reason: result.Reason}
		}
		if result.FinalPriceCents <= 0 {
			uc.logger.Warn("CreateCheckout: coupon %q covers the whole price %d for customer=%s", code, basePrice, req.CustomerID)
			return nil, &CouponError{Reason: couponModels.ReasonFullDiscount}
		}
		finalPrice = result.FinalPriceCents
		couponID = result.CouponID
	}
	if finalPrice <= 0 {
		return nil, fmt.Errorf("%w: item has no price", ErrInvalidInput)
	}

	// 4. Платёжная сессия
	meta := domain.CheckoutMetadata{
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
		Intent:        intent,
		CouponID:      couponID,
	}
	session, err := uc.payments.CreateCheckoutSession(ctx, &stripe.CheckoutParams{
		ProductName:   productName,
		AmountCents:   finalPrice,
		Currency:      uc.cfg.Currency,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    withSessionID(uc.cfg.SuccessURL),
		CancelURL:     uc.cfg.CancelURL,
		Metadata:      meta.Encode(),
	})
	if err != nil {
		uc.metrics.UpstreamError(providerStripe)
		uc.logger.Error("CreateCheckout: failed to create session for customer=%s: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	uc.logger.Info("CreateCheckout: session=%s for customer=%s, %d -> %d cents",
		session.ID, req.CustomerID, basePrice, finalPrice)

	return &Response{
		SessionID:       session.ID,
		RedirectURL:     session.URL,
		BasePriceCents:  basePrice,
		FinalPriceCents: finalPrice,
		CouponID:        couponID,
	}, nil
}

func (uc *UseCase) resolveItem(ctx context.Context, req *Request) (string, int64, domain.PaymentIntent, error) {
	switch req.ItemType {
	case domain.ItemReservation:
		offering, err := uc.catalogRepo.GetOffering(ctx, req.ItemID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrOfferingNotFound) {
				uc.logger.Warn("CreateCheckout: offering id=%d not found", req.ItemID)
				return "", 0, nil, ErrOfferingNotFound
			}
			uc.logger.Error("CreateCheckout: failed to get offering id=%d: %v", req.ItemID, err)
			return "", 0, nil, fmt.Errorf("%w: failed to get offering: %w", ErrInternal, err)
		}
		if !offering.Active {
			uc.logger.Warn("CreateCheckout: offering id=%d is inactive", req.ItemID)
			return "", 0, nil, ErrOfferingNotFound
		}

		// Окончательная проверка мест будет в вебхуке, здесь отсекаем заведомо занятые слоты
		date := domain.DateOnly(*req.Date)
		if _, err := uc.availability.CheckBookable(ctx, date, *req.TimeSlotID, offering); err != nil {
			return "", 0, nil, uc.mapAvailabilityError(err, *req.TimeSlotID)
		}

		intent := domain.ReservationIntent{Date: date, TimeSlotID: *req.TimeSlotID, OfferingID: offering.ID}
		return offering.Name, offering.PriceCents, intent, nil

	case domain.ItemPass:
		passType, err := uc.catalogRepo.GetPassType(ctx, req.ItemID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrPassTypeNotFound) {
				uc.logger.Warn("CreateCheckout: pass type id=%d not found", req.ItemID)
				return "", 0, nil, ErrPassTypeNotFound
			}
			uc.logger.Error("CreateCheckout: failed to get pass type id=%d: %v", req.ItemID, err)
			return "", 0, nil, fmt.Errorf("%w: failed to get pass type: %w", ErrInternal, err)
		}
		if !passType.Active {
			uc.logger.Warn("CreateCheckout: pass type id=%d is inactive", req.ItemID)
			return "", 0, nil, ErrPassTypeNotFound
		}
		return passType.Name, passType.PriceCents, domain.PassIntent{PassTypeID: passType.ID}, nil

	default:
		return "", 0, nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, req.ItemType)
	}
}

func (uc *UseCase) mapAvailabilityError(err error, slotID int64) error {
	switch {
	case errors.Is(err, availability.ErrSlotNotFound), errors.Is(err, availability.ErrSlotNotOnDate):
		uc.logger.Warn("CreateCheckout: slot id=%d not bookable on date: %v", slotID, err)
		return ErrSlotNotFound
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrScheduleMismatch),
		errors.Is(err, domain.ErrSlotInPast):
		uc.logger.Warn("CreateCheckout: slot id=%d rejected: %v", slotID, err)
		return err
	default:
		uc.logger.Error("CreateCheckout: availability check for slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: availability: %w", ErrInternal, err)
	}
}

// withSessionID добавляет session_id={CHECKOUT_SESSION_ID} к success URL
// Плейсхолдер не экранируется, иначе провайдер его не подставит
func withSessionID(raw string) string {
	if raw == "" || strings.Contains(raw, sessionPlaceholder) {
		return raw
	}
	sep := "?"
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return raw + sep + "session_id=" + sessionPlaceholder
}
