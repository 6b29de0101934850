package create_checkout

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	createCheckout "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_checkout"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingCustomer    = "отсутствует идентификатор клиента"
	msgInvalidInput       = "некорректные параметры покупки"
	msgOfferingNotFound   = "услуга не найдена"
	msgPassTypeNotFound   = "абонемент не найден"
	msgSlotNotFound       = "временной слот не найден"
	msgCouponRejected     = "купон не может быть применён"
	msgUpstream           = "платёжный сервис временно недоступен"
)

type Handler struct {
	useCase CreateCheckoutUseCase
	logger  Logger
}

func NewHandler(useCase CreateCheckoutUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/checkout
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetCustomerID(r.Context())
	if !ok {
		h.logger.Warn("POST /checkout - Missing customer ID")
		handlers.RespondUnauthorized(w, msgMissingCustomer)
		return
	}

	var req CreateCheckoutRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /checkout - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID, middleware.GetCustomerEmail(r.Context()))
	if err != nil {
		h.logger.Warn("POST /checkout - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var couponErr *createCheckout.CouponError
		switch {
		case errors.As(err, &couponErr):
			h.logger.Warn("POST /checkout - Coupon rejected: customer=%s, reason=%s", customerID, couponErr.Reason)
			handlers.RespondErrorCode(w, http.StatusBadRequest, handlers.CodeCouponRejected,
				msgCouponRejected+": "+string(couponErr.Reason))

		case errors.Is(err, createCheckout.ErrInvalidInput):
			h.logger.Warn("POST /checkout - Invalid input: customer=%s, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createCheckout.ErrOfferingNotFound):
			h.logger.Warn("POST /checkout - Offering not found: item_id=%d", req.ItemID)
			handlers.RespondNotFound(w, msgOfferingNotFound)

		case errors.Is(err, createCheckout.ErrPassTypeNotFound):
			h.logger.Warn("POST /checkout - Pass type not found: item_id=%d", req.ItemID)
			handlers.RespondNotFound(w, msgPassTypeNotFound)

		case errors.Is(err, createCheckout.ErrSlotNotFound):
			h.logger.Warn("POST /checkout - Slot not found: customer=%s", customerID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createCheckout.ErrUpstream):
			h.logger.Error("POST /checkout - Payment provider error: customer=%s, error=%v", customerID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgUpstream)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /checkout - Rejected: customer=%s, error=%v", customerID, err)

		default:
			h.logger.Error("POST /checkout - Failed to create checkout: customer=%s, error=%v", customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /checkout - Checkout session created: session_id=%s, customer=%s, item_type=%s, final_price=%d",
		result.SessionID, customerID, req.ItemType, result.FinalPriceCents)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
