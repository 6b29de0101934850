package redeem_pass

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	redeemPass "github.com/m04kA/SMC-StudioBooking/internal/usecase/redeem_pass"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingCustomer    = "отсутствует идентификатор клиента"
	msgInvalidInput       = "некорректные параметры бронирования"
	msgOfferingNotFound   = "услуга не найдена"
	msgSlotNotFound       = "временной слот не найден"
	msgPassNotFound       = "абонемент не найден"
	msgForbidden          = "абонемент принадлежит другому клиенту"
)

type Handler struct {
	useCase RedeemPassUseCase
	logger  Logger
}

func NewHandler(useCase RedeemPassUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/redeem
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetCustomerID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations/redeem - Missing customer ID")
		handlers.RespondUnauthorized(w, msgMissingCustomer)
		return
	}

	var req RedeemPassRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/redeem - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID, middleware.GetCustomerEmail(r.Context()))
	if err != nil {
		h.logger.Warn("POST /reservations/redeem - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, redeemPass.ErrInvalidInput):
			h.logger.Warn("POST /reservations/redeem - Invalid input: customer=%s, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, redeemPass.ErrOfferingNotFound):
			h.logger.Warn("POST /reservations/redeem - Offering not found: offering_id=%d", req.OfferingID)
			handlers.RespondNotFound(w, msgOfferingNotFound)

		case errors.Is(err, redeemPass.ErrSlotNotFound):
			h.logger.Warn("POST /reservations/redeem - Slot not found: time_slot_id=%d", req.TimeSlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, redeemPass.ErrPassNotFound):
			h.logger.Warn("POST /reservations/redeem - Pass not found: customer=%s", customerID)
			handlers.RespondNotFound(w, msgPassNotFound)

		case errors.Is(err, redeemPass.ErrAccessDenied):
			h.logger.Warn("POST /reservations/redeem - Access denied: customer=%s", customerID)
			handlers.RespondForbidden(w, msgForbidden)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /reservations/redeem - Rejected: customer=%s, error=%v", customerID, err)

		default:
			h.logger.Error("POST /reservations/redeem - Failed to redeem pass: customer=%s, error=%v", customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/redeem - Reservation created: reservation_id=%d, pass_id=%d, customer=%s",
		result.ReservationID, result.PassInstanceID, customerID)
	handlers.RespondJSON(w, http.StatusCreated, &RedeemPassResponse{
		ReservationID:  result.ReservationID,
		PassInstanceID: result.PassInstanceID,
	})
}
