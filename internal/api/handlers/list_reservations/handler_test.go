package list_reservations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

type fakeService struct {
	list []*domain.Reservation
	err  error
}

func (f *fakeService) ListForCustomer(context.Context, uuid.UUID) ([]*domain.Reservation, error) {
	return f.list, f.err
}

func get(svc ReservationService, query string, customer uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/reservations"+query, nil)
	if customer != uuid.Nil {
		req = req.WithContext(middleware.WithCustomer(req.Context(), customer, ""))
	}
	w := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(w, req)
	return w
}

func TestHandle(t *testing.T) {
	customer := uuid.New()
	svc := &fakeService{list: []*domain.Reservation{
		{ID: 1, CustomerID: customer, State: domain.ReservationConfirmed},
		{ID: 2, CustomerID: customer, State: domain.ReservationCancelled, AccessCode: ptr.Ptr("654321")},
	}}

	t.Run("all", func(t *testing.T) {
		w := get(svc, "", customer)
		require.Equal(t, http.StatusOK, w.Code)

		var views []handlers.ReservationView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&views))
		require.Len(t, views, 2)
		assert.Nil(t, views[1].AccessCode, "код отменённого бронирования не показывается")
	})

	t.Run("filtered", func(t *testing.T) {
		w := get(svc, "?state=cancelled", customer)
		require.Equal(t, http.StatusOK, w.Code)

		var views []handlers.ReservationView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&views))
		require.Len(t, views, 1)
		assert.Equal(t, int64(2), views[0].ID)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		w := get(&fakeService{}, "", customer)
		assert.Equal(t, "[]\n", w.Body.String())
	})
}

func TestHandleErrors(t *testing.T) {
	customer := uuid.New()

	assert.Equal(t, http.StatusUnauthorized, get(&fakeService{}, "", uuid.Nil).Code)
	assert.Equal(t, http.StatusBadRequest, get(&fakeService{}, "?state=archived", customer).Code)
	assert.Equal(t, http.StatusInternalServerError, get(&fakeService{err: errors.New("db down")}, "", customer).Code)
}
