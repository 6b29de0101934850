package cancel_reservation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	cancelReservation "github.com/m04kA/SMC-StudioBooking/internal/usecase/cancel_reservation"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type fakeUseCase struct {
	got *cancelReservation.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *cancelReservation.Request) (*cancelReservation.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &cancelReservation.Response{ReservationID: req.ReservationID, RefundScheduled: true}, nil
}

func serve(h *Handler, path string, customerID uuid.UUID) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/reservations/{reservationId}/cancel", h.Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	if customerID != uuid.Nil {
		req = req.WithContext(middleware.WithCustomer(req.Context(), customerID, ""))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandle(t *testing.T) {
	customerID := uuid.New()
	uc := &fakeUseCase{}

	w := serve(NewHandler(uc, logger.NewNop()), "/api/v1/reservations/17/cancel", customerID)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(17), uc.got.ReservationID)
	assert.Equal(t, customerID, uc.got.RequesterID)

	var resp CancelReservationResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "cancelled", resp.State)
	assert.True(t, resp.RefundScheduled)
}

func TestHandleErrors(t *testing.T) {
	customerID := uuid.New()
	cases := []struct {
		name     string
		path     string
		customer uuid.UUID
		err      error
		status   int
		code     string
	}{
		{"bad id", "/api/v1/reservations/abc/cancel", customerID, nil, http.StatusBadRequest, handlers.CodeBadRequest},
		{"no customer", "/api/v1/reservations/17/cancel", uuid.Nil, nil, http.StatusUnauthorized, handlers.CodeUnauthorized},
		{"not found", "/api/v1/reservations/17/cancel", customerID, cancelReservation.ErrReservationNotFound, http.StatusNotFound, handlers.CodeNotFound},
		{"foreign", "/api/v1/reservations/17/cancel", customerID, cancelReservation.ErrAccessDenied, http.StatusForbidden, handlers.CodeForbidden},
		{"window", "/api/v1/reservations/17/cancel", customerID, domain.ErrCancellationWindowExpired, http.StatusBadRequest, handlers.CodeCancellationExpired},
		{"twice", "/api/v1/reservations/17/cancel", customerID, domain.ErrInvalidTransition, http.StatusConflict, handlers.CodeConflict},
		{"internal", "/api/v1/reservations/17/cancel", customerID, cancelReservation.ErrInternal, http.StatusInternalServerError, handlers.CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(NewHandler(&fakeUseCase{err: tc.err}, logger.NewNop()), tc.path, tc.customer)

			assert.Equal(t, tc.status, w.Code)
			var resp handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}
