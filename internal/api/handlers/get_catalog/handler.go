package get_catalog

import (
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
)

type Handler struct {
	catalog   CatalogRepository
	totalBays int
	logger    Logger
}

func NewHandler(catalog CatalogRepository, totalBays int, logger Logger) *Handler {
	return &Handler{
		catalog:   catalog,
		totalBays: totalBays,
		logger:    logger,
	}
}

// Handle GET /api/v1/catalog
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offerings, err := h.catalog.ListOfferings(ctx)
	if err != nil {
		h.logger.Error("GET /catalog - Failed to list offerings: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	passTypes, err := h.catalog.ListPassTypes(ctx)
	if err != nil {
		h.logger.Error("GET /catalog - Failed to list pass types: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	slots, err := h.catalog.ListTimeSlots(ctx)
	if err != nil {
		h.logger.Error("GET /catalog - Failed to list time slots: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, newCatalogResponse(h.totalBays, offerings, passTypes, slots))
}
