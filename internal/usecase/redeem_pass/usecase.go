package redeem_pass

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-StudioBooking/internal/service/entitlement"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations"
	resModels "github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
)

// UseCase use case бронирования по абонементу без оплаты
type UseCase struct {
	catalogRepo  CatalogRepository
	reservations ReservationService
	ledger       EntitlementLedger
	txManager    TransactionManager
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	reservations ReservationService,
	ledger EntitlementLedger,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:  catalogRepo,
		reservations: reservations,
		ledger:       ledger,
		txManager:    txManager,
		logger:       logger,
	}
}

// Execute выбирает абонемент, списывает занятие и подтверждает бронирование
// Выбор абонемента и списание идут в одной транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RedeemPass: customer=%s, date=%s, slot=%d, offering=%d",
		req.CustomerID, req.Date.Format(domain.DateFormat), req.TimeSlotID, req.OfferingID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RedeemPass: validation failed: %v", err)
		return nil, err
	}

	var resp *Response
	err := uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		passID, err := uc.choosePass(ctx, req)
		if err != nil {
			return err
		}

		created, err := uc.reservations.Create(ctx, &resModels.CreateRequest{
			CustomerID:     req.CustomerID,
			CustomerEmail:  req.CustomerEmail,
			Date:           domain.DateOnly(req.Date),
			TimeSlotID:     req.TimeSlotID,
			OfferingID:     req.OfferingID,
			PaymentMethod:  domain.PaymentPass,
			PassInstanceID: &passID,
		})
		if err != nil {
			return mapReservationError(err)
		}

		resp = &Response{ReservationID: created.ID, PassInstanceID: passID}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("RedeemPass: customer=%s: %v", req.CustomerID, err)
		} else {
			uc.logger.Warn("RedeemPass: rejected for customer=%s: %v", req.CustomerID, err)
		}
		return nil, err
	}

	uc.logger.Info("RedeemPass: reservation id=%d confirmed with pass id=%d", resp.ReservationID, resp.PassInstanceID)
	return resp, nil
}

// choosePass возвращает переданный абонемент или подбирает подходящий для слота
func (uc *UseCase) choosePass(ctx context.Context, req *Request) (int64, error) {
	if req.PassInstanceID != nil {
		return *req.PassInstanceID, nil
	}

	slot, err := uc.catalogRepo.GetTimeSlot(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrTimeSlotNotFound) {
			return 0, ErrSlotNotFound
		}
		return 0, fmt.Errorf("%w: get slot: %w", ErrInternal, err)
	}

	pass, err := uc.ledger.EligiblePass(ctx, req.CustomerID, slot.StartTime)
	if err != nil {
		if errors.Is(err, domain.ErrEntitlementExhausted) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: eligible pass: %w", ErrInternal, err)
	}
	return pass.ID, nil
}

// mapReservationError переводит ошибки сервиса бронирований в ошибки usecase,
// доменные отказы проходят как есть
func mapReservationError(err error) error {
	switch {
	case errors.Is(err, reservations.ErrOfferingNotFound):
		return ErrOfferingNotFound
	case errors.Is(err, reservations.ErrSlotNotFound):
		return ErrSlotNotFound
	case errors.Is(err, reservations.ErrPassNotFound):
		return ErrPassNotFound
	case errors.Is(err, reservations.ErrAccessDenied), errors.Is(err, entitlement.ErrAccessDenied):
		return ErrAccessDenied
	case errors.Is(err, reservations.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrEntitlementExhausted),
		errors.Is(err, domain.ErrScheduleMismatch),
		errors.Is(err, domain.ErrSlotInPast):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
