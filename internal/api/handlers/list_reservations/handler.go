package list_reservations

import (
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const (
	msgMissingCustomer = "отсутствует идентификатор клиента"
	msgInvalidState    = "некорректный статус бронирования"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/me/reservations
// Query params: state (optional: pending | confirmed | cancelled)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetCustomerID(r.Context())
	if !ok {
		h.logger.Warn("GET /me/reservations - Missing customer ID")
		handlers.RespondUnauthorized(w, msgMissingCustomer)
		return
	}

	state := domain.ReservationState(r.URL.Query().Get("state"))
	switch state {
	case "", domain.ReservationPending, domain.ReservationConfirmed, domain.ReservationCancelled:
	default:
		h.logger.Warn("GET /me/reservations - Invalid state filter: %q", state)
		handlers.RespondBadRequest(w, msgInvalidState)
		return
	}

	list, err := h.service.ListForCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Error("GET /me/reservations - Failed to list reservations: customer=%s, error=%v", customerID, err)
		handlers.RespondInternalError(w)
		return
	}

	views := make([]handlers.ReservationView, 0, len(list))
	for _, res := range list {
		if state != "" && res.State != state {
			continue
		}
		views = append(views, handlers.NewReservationView(res))
	}

	h.logger.Info("GET /me/reservations - Reservations retrieved: customer=%s, count=%d", customerID, len(views))
	handlers.RespondJSON(w, http.StatusOK, views)
}
