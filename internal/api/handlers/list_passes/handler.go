package list_passes

import (
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
)

const msgMissingCustomer = "отсутствует идентификатор клиента"

type Handler struct {
	ledger EntitlementLedger
	logger Logger
}

func NewHandler(ledger EntitlementLedger, logger Logger) *Handler {
	return &Handler{
		ledger: ledger,
		logger: logger,
	}
}

// Handle GET /api/v1/me/passes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetCustomerID(r.Context())
	if !ok {
		h.logger.Warn("GET /me/passes - Missing customer ID")
		handlers.RespondUnauthorized(w, msgMissingCustomer)
		return
	}

	passes, err := h.ledger.ListForCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Error("GET /me/passes - Failed to list passes: customer=%s, error=%v", customerID, err)
		handlers.RespondInternalError(w)
		return
	}

	views := make([]handlers.PassView, 0, len(passes))
	for _, p := range passes {
		views = append(views, handlers.NewPassView(p))
	}

	h.logger.Info("GET /me/passes - Passes retrieved: customer=%s, count=%d", customerID, len(views))
	handlers.RespondJSON(w, http.StatusOK, views)
}
