package stripe_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	completePayment "github.com/m04kA/SMC-StudioBooking/internal/usecase/complete_payment"
)

const (
	signatureHeader = "Stripe-Signature"

	// maxPayloadBytes Stripe ограничивает размер события, с запасом
	maxPayloadBytes = 512 << 10
)

const (
	msgInvalidRequest = "некорректный запрос"
)

type Handler struct {
	useCase CompletePaymentUseCase
	logger  Logger
}

func NewHandler(useCase CompletePaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/webhooks/stripe
// Тело читается как есть: подпись считается по сырым байтам
// 2xx означает, что событие применено или уже было применено ранее,
// 5xx просит провайдера повторить доставку
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if err != nil || len(payload) == 0 || len(payload) > maxPayloadBytes {
		h.logger.Warn("POST /webhooks/stripe - Unreadable body: size=%d, error=%v", len(payload), err)
		handlers.RespondBadRequest(w, msgInvalidRequest)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &completePayment.Request{
		Payload:   payload,
		Signature: r.Header.Get(signatureHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, completePayment.ErrInvalidSignature):
			// наружу без деталей проверки
			h.logger.Warn("POST /webhooks/stripe - Signature rejected: %v", err)
			handlers.RespondErrorCode(w, http.StatusBadRequest, handlers.CodeInvalidSignature, msgInvalidRequest)

		case errors.Is(err, completePayment.ErrInvalidPayload):
			h.logger.Warn("POST /webhooks/stripe - Invalid payload: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("POST /webhooks/stripe - Failed to apply event: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /webhooks/stripe - Event handled: session_id=%s, outcome=%s", result.SessionID, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
