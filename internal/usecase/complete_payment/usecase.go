package complete_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/stripe"
	couponModels "github.com/m04kA/SMC-StudioBooking/internal/service/coupons/models"
	"github.com/m04kA/SMC-StudioBooking/internal/service/entitlement"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations"
	resModels "github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
)

// UseCase обработка события об успешной оплате
// Единственный путь, по которому оплата превращается в бронирование или абонемент
type UseCase struct {
	verifier     EventVerifier
	paymentRepo  PaymentRepository
	reservations ReservationService
	ledger       EntitlementLedger
	coupons      CouponRedeemer
	outboxRepo   OutboxRepository
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	verifier EventVerifier,
	paymentRepo PaymentRepository,
	reservations ReservationService,
	ledger EntitlementLedger,
	coupons CouponRedeemer,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return NewUseCaseWithTime(verifier, paymentRepo, reservations, ledger, coupons, outboxRepo, txManager, metrics, &RealTimeProvider{}, logger)
}

// NewUseCaseWithTime создает use case с заданным провайдером времени (для тестирования)
func NewUseCaseWithTime(
	verifier EventVerifier,
	paymentRepo PaymentRepository,
	reservations ReservationService,
	ledger EntitlementLedger,
	coupons CouponRedeemer,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		verifier:     verifier,
		paymentRepo:  paymentRepo,
		reservations: reservations,
		ledger:       ledger,
		coupons:      coupons,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute проверяет подпись и применяет оплату
// Повтор того же события (тот же session id) ничего не меняет и возвращает OutcomeDuplicate
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	switch {
	case err == nil:
		uc.metrics.WebhookEvent(string(resp.Outcome))
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrInvalidPayload):
		uc.metrics.WebhookEvent(string(OutcomeRejected))
	default:
		uc.metrics.WebhookEvent(string(OutcomeFailed))
	}
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Подпись
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CompletePayment: rejected request: %v", err)
		return nil, err
	}

	event, err := uc.verifier.ConstructEvent(req.Payload, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, stripe.ErrUnhandledEvent):
			uc.logger.Info("CompletePayment: ignored event: %v", err)
			return &Response{Outcome: OutcomeIgnored}, nil
		case errors.Is(err, stripe.ErrInvalidSignature):
			uc.logger.Warn("CompletePayment: signature check failed: %v", err)
			return nil, ErrInvalidSignature
		default:
			uc.logger.Warn("CompletePayment: malformed event: %v", err)
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}

	// 2. Метаданные сессии
	meta, err := domain.DecodeCheckoutMetadata(event.Metadata)
	if err != nil {
		// Повтор доставки не исправит метаданные, поэтому отвечаем 2xx и оставляем разбор оператору
		uc.logger.Error("CompletePayment: session=%s, payment_intent=%s, amount=%d: bad metadata: %v",
			event.SessionID, event.PaymentIntentID, event.AmountCents, err)
		return &Response{Outcome: OutcomeInvalidMetadata, SessionID: event.SessionID}, nil
	}
	if meta.CustomerEmail == "" {
		meta.CustomerEmail = event.CustomerEmail
	}

	uc.logger.Info("CompletePayment: session=%s, customer=%s, item=%s/%d, amount=%d",
		event.SessionID, meta.CustomerID, meta.Intent.ItemType(), meta.Intent.ItemID(), event.AmountCents)

	// 3. Журнал платежей и основное изменение в одной транзакции
	resp := &Response{SessionID: event.SessionID}
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		payment := &domain.Payment{
			SessionID:       event.SessionID,
			PaymentIntentID: event.PaymentIntentID,
			CustomerID:      meta.CustomerID,
			ItemType:        meta.Intent.ItemType(),
			ItemID:          meta.Intent.ItemID(),
			AmountCents:     event.AmountCents,
			Currency:        event.Currency,
			Status:          domain.PaymentCompleted,
			CouponID:        meta.CouponID,
		}
		inserted, err := uc.paymentRepo.Record(ctx, payment)
		if err != nil {
			return fmt.Errorf("%w: record payment: %w", ErrInternal, err)
		}
		if !inserted {
			resp.Outcome = OutcomeDuplicate
			return nil
		}
		resp.PaymentID = payment.ID

		var refundReason string
		switch intent := meta.Intent.(type) {
		case domain.ReservationIntent:
			refundReason, err = uc.applyReservation(ctx, payment, meta, intent, resp)
		case domain.PassIntent:
			refundReason, err = uc.applyPass(ctx, payment, meta, intent, resp)
		default:
			err = fmt.Errorf("%w: unsupported payment intent %T", ErrInternal, intent)
		}
		if err != nil {
			return err
		}

		if refundReason != "" {
			resp.Outcome = OutcomeRefundPending
			return uc.scheduleRefund(ctx, payment, refundReason)
		}

		if meta.CouponID != nil {
			if err := uc.coupons.Redeem(ctx, &couponModels.RedeemRequest{
				CouponID:   *meta.CouponID,
				CustomerID: meta.CustomerID,
				ItemType:   payment.ItemType,
				ItemID:     payment.ItemID,
				PaymentID:  payment.ID,
			}); err != nil {
				return fmt.Errorf("%w: redeem coupon: %w", ErrInternal, err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("CompletePayment: session=%s: %v", event.SessionID, err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	switch resp.Outcome {
	case OutcomeDuplicate:
		uc.logger.Info("CompletePayment: session=%s already processed", event.SessionID)
	case OutcomeRefundPending:
		uc.logger.Warn("CompletePayment: session=%s paid but not fulfillable, refund scheduled for payment id=%d",
			event.SessionID, resp.PaymentID)
	default:
		uc.logger.Info("CompletePayment: session=%s applied as %s, payment id=%d", event.SessionID, resp.Outcome, resp.PaymentID)
	}
	return resp, nil
}

// applyReservation создает оплаченное бронирование
// Возвращает причину возврата, если слот стал недоступен после оплаты
func (uc *UseCase) applyReservation(
	ctx context.Context,
	payment *domain.Payment,
	meta domain.CheckoutMetadata,
	intent domain.ReservationIntent,
	resp *Response,
) (string, error) {
	created, err := uc.reservations.Create(ctx, &resModels.CreateRequest{
		CustomerID:     meta.CustomerID,
		CustomerEmail:  meta.CustomerEmail,
		Date:           intent.Date,
		TimeSlotID:     intent.TimeSlotID,
		OfferingID:     intent.OfferingID,
		PaymentMethod:  domain.PaymentDirect,
		PricePaidCents: payment.AmountCents,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			return domain.RefundReasonCapacity, nil
		case errors.Is(err, domain.ErrSlotInPast),
			errors.Is(err, domain.ErrScheduleMismatch),
			errors.Is(err, reservations.ErrSlotNotFound),
			errors.Is(err, reservations.ErrOfferingNotFound):
			return domain.RefundReasonUnavailable, nil
		default:
			return "", fmt.Errorf("%w: create reservation: %w", ErrInternal, err)
		}
	}

	if err := uc.paymentRepo.LinkReservation(ctx, payment.ID, created.ID); err != nil {
		return "", fmt.Errorf("%w: link reservation: %w", ErrInternal, err)
	}
	resp.Outcome = OutcomeReservation
	resp.ReservationID = &created.ID
	return "", nil
}

// applyPass выпускает оплаченный абонемент и ставит письмо о покупке
func (uc *UseCase) applyPass(
	ctx context.Context,
	payment *domain.Payment,
	meta domain.CheckoutMetadata,
	intent domain.PassIntent,
	resp *Response,
) (string, error) {
	pass, err := uc.ledger.Instantiate(ctx, meta.CustomerID, meta.CustomerEmail, intent.PassTypeID)
	if err != nil {
		if errors.Is(err, entitlement.ErrPassTypeNotFound) {
			return domain.RefundReasonUnavailable, nil
		}
		return "", fmt.Errorf("%w: instantiate pass: %w", ErrInternal, err)
	}

	if err := uc.paymentRepo.LinkPass(ctx, payment.ID, pass.ID); err != nil {
		return "", fmt.Errorf("%w: link pass: %w", ErrInternal, err)
	}
	if err := uc.enqueue(ctx, domain.TaskNotifyPass, domain.PassTaskPayload{
		PassInstanceID: pass.ID,
		AmountCents:    payment.AmountCents,
	}); err != nil {
		return "", err
	}

	resp.Outcome = OutcomePass
	resp.PassInstanceID = &pass.ID
	return "", nil
}

// scheduleRefund помечает платёж refund_pending и ставит возврат в outbox
func (uc *UseCase) scheduleRefund(ctx context.Context, payment *domain.Payment, reason string) error {
	if err := uc.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentRefundPending); err != nil {
		return fmt.Errorf("%w: mark refund pending: %w", ErrInternal, err)
	}
	return uc.enqueue(ctx, domain.TaskRefundPayment, domain.RefundTaskPayload{
		PaymentID:       payment.ID,
		PaymentIntentID: payment.PaymentIntentID,
		AmountCents:     payment.AmountCents,
		Reason:          reason,
	})
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
