package payments

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const providerStripe = "stripe"

// Service возвраты оплат через провайдера
type Service struct {
	paymentRepo PaymentRepository
	client      RefundClient
	metrics     Metrics
	logger      Logger
}

// NewService создает новый экземпляр сервиса возвратов
func NewService(paymentRepo PaymentRepository, client RefundClient, metrics Metrics, logger Logger) *Service {
	return &Service{
		paymentRepo: paymentRepo,
		client:      client,
		metrics:     metrics,
		logger:      logger,
	}
}

// Refund возвращает платёж и помечает его refunded
// Ключ идемпотентности привязан к платежу, повтор задачи не вернёт деньги дважды
func (s *Service) Refund(ctx context.Context, task domain.RefundTaskPayload) error {
	if task.PaymentIntentID == "" {
		return fmt.Errorf("%w: payment id=%d", ErrInvalidInput, task.PaymentID)
	}

	key := fmt.Sprintf("refund-payment-%d", task.PaymentID)
	refund, err := s.client.CreateRefund(ctx, task.PaymentIntentID, task.AmountCents, key)
	if err != nil {
		s.metrics.UpstreamError(providerStripe)
		s.logger.Error("Refund: payment id=%d (%s): %v", task.PaymentID, task.Reason, err)
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if err := s.paymentRepo.UpdateStatus(ctx, task.PaymentID, domain.PaymentRefunded); err != nil {
		return fmt.Errorf("%w: Refund - update status: %w", ErrInternal, err)
	}

	s.logger.Info("Refund: payment id=%d refunded (%s), refund=%s, status=%s",
		task.PaymentID, task.Reason, refund.ID, refund.Status)
	return nil
}
