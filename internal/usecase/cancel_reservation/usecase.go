package cancel_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	paymentRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/payment"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations"
)

// UseCase use case отмены бронирования клиентом
type UseCase struct {
	reservations ReservationService
	paymentRepo  PaymentRepository
	outboxRepo   OutboxRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservations ReservationService,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservations: reservations,
		paymentRepo:  paymentRepo,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute отменяет бронирование и в той же транзакции ставит возврат денег,
// отзыв кода и письмо клиенту
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelReservation: reservation id=%d, requester=%s", req.ReservationID, req.RequesterID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelReservation: validation failed: %v", err)
		return nil, err
	}

	resp := &Response{ReservationID: req.ReservationID}
	err := uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		res, err := uc.reservations.Cancel(ctx, req.ReservationID, req.RequesterID)
		if err != nil {
			return mapReservationError(err)
		}

		switch res.PaymentMethod {
		case domain.PaymentPass:
			resp.PassCredited = res.PassInstanceID != nil
		case domain.PaymentDirect:
			scheduled, err := uc.scheduleRefund(ctx, res)
			if err != nil {
				return err
			}
			resp.RefundScheduled = scheduled
		}

		if res.HasAccessCode() {
			if err := uc.enqueue(ctx, domain.TaskRevokeAccess, domain.ReservationTaskPayload{ReservationID: res.ID}); err != nil {
				return err
			}
			resp.AccessRevoked = true
		}

		return uc.enqueue(ctx, domain.TaskNotifyReservation, domain.ReservationTaskPayload{
			ReservationID: res.ID,
			Reason:        domain.NotifyCancelled,
		})
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("CancelReservation: reservation id=%d: %v", req.ReservationID, err)
		} else {
			uc.logger.Warn("CancelReservation: reservation id=%d rejected: %v", req.ReservationID, err)
		}
		return nil, err
	}

	uc.logger.Info("CancelReservation: reservation id=%d cancelled, refund=%t, pass credited=%t, revoke=%t",
		req.ReservationID, resp.RefundScheduled, resp.PassCredited, resp.AccessRevoked)
	return resp, nil
}

// scheduleRefund ставит возврат по платежу, которым оплачено бронирование
func (uc *UseCase) scheduleRefund(ctx context.Context, res *domain.Reservation) (bool, error) {
	payment, err := uc.paymentRepo.GetByReservationID(ctx, res.ID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			uc.logger.Warn("CancelReservation: no payment linked to reservation id=%d, refund skipped", res.ID)
			return false, nil
		}
		return false, fmt.Errorf("%w: get payment: %w", ErrInternal, err)
	}

	if payment.Status != domain.PaymentCompleted {
		uc.logger.Warn("CancelReservation: payment id=%d is %s, refund skipped", payment.ID, payment.Status)
		return false, nil
	}

	if err := uc.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentRefundPending); err != nil {
		return false, fmt.Errorf("%w: mark refund pending: %w", ErrInternal, err)
	}
	if err := uc.enqueue(ctx, domain.TaskRefundPayment, domain.RefundTaskPayload{
		PaymentID:       payment.ID,
		PaymentIntentID: payment.PaymentIntentID,
		AmountCents:     payment.AmountCents,
		Reason:          domain.RefundReasonCancellation,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *UseCase) enqueue(ctx context.Context, kind domain.TaskKind, payload interface{}) error {
	task, err := domain.NewOutboxTask(kind, payload, uc.timeProvider.Now())
	if err != nil {
		return fmt.Errorf("%w: build %s task: %w", ErrInternal, kind, err)
	}
	if err := uc.outboxRepo.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("%w: enqueue %s: %w", ErrInternal, kind, err)
	}
	return nil
}

func mapReservationError(err error) error {
	switch {
	case errors.Is(err, reservations.ErrReservationNotFound):
		return ErrReservationNotFound
	case errors.Is(err, reservations.ErrAccessDenied):
		return ErrAccessDenied
	case errors.Is(err, domain.ErrCancellationWindowExpired), errors.Is(err, domain.ErrInvalidTransition):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
