package redeem_pass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/service/entitlement"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations"
	redeemPass "github.com/m04kA/SMC-StudioBooking/internal/usecase/redeem_pass"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

const testSecret = "test-secret"

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type testEnv struct {
	router *mux.Router
	store  *memory.Store
	studio memory.Studio
	ledger *entitlement.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	studio := store.SeedStudio()
	clock := &fixedClock{now: memory.StudioDate.Add(-48 * time.Hour)}
	log := logger.NewNop()

	avail := availability.NewServiceWithTime(store.Catalog(), store.Reservations(), availability.Config{}, clock, log)
	ledger := entitlement.NewServiceWithTime(store.Passes(), store.Catalog(), types.MustTimeString("14:00"), clock, log)
	resSvc := reservations.NewServiceWithTime(
		store.Reservations(), store.Catalog(), store.Outbox(), avail, ledger, store.TxManager(),
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		reservations.Config{CancellationCutoff: 24 * time.Hour}, clock, log,
	)
	uc := redeemPass.NewUseCase(store.Catalog(), resSvc, ledger, store.TxManager(), log)

	router := mux.NewRouter()
	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.Auth(testSecret))
	protected.HandleFunc("/reservations/redeem", NewHandler(uc, log).Handle).Methods(http.MethodPost)

	return &testEnv{router: router, store: store, studio: studio, ledger: ledger}
}

func (e *testEnv) post(t *testing.T, customer uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Email:            "client@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: customer.String()},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/redeem", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHandleRedeemsAutomatically(t *testing.T) {
	env := newTestEnv(t)
	customer := uuid.New()
	pass, err := env.ledger.Instantiate(context.Background(), customer, "client@example.com", env.studio.FivePass.ID)
	require.NoError(t, err)

	w := env.post(t, customer, fmt.Sprintf(`{"date":"2030-01-01","timeSlotId":%d,"offeringId":%d}`,
		env.studio.Morning.ID, env.studio.SingleBay.ID))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp RedeemPassResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, pass.ID, resp.PassInstanceID)
	assert.NotZero(t, resp.ReservationID)
	assert.Equal(t, 1, env.store.Counts().Reservations)
}

func TestHandleErrors(t *testing.T) {
	env := newTestEnv(t)
	customer := uuid.New()
	other := uuid.New()
	foreign, err := env.ledger.Instantiate(context.Background(), other, "other@example.com", env.studio.FivePass.ID)
	require.NoError(t, err)

	slot, offering := env.studio.Morning.ID, env.studio.SingleBay.ID
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{"date":`, http.StatusBadRequest, handlers.CodeBadRequest},
		{"bad date", fmt.Sprintf(`{"date":"01.01.2030","timeSlotId":%d,"offeringId":%d}`, slot, offering), http.StatusBadRequest, handlers.CodeBadRequest},
		{"no pass", fmt.Sprintf(`{"date":"2030-01-01","timeSlotId":%d,"offeringId":%d}`, slot, offering), http.StatusConflict, handlers.CodePassExhausted},
		{"foreign pass", fmt.Sprintf(`{"date":"2030-01-01","timeSlotId":%d,"offeringId":%d,"passInstanceId":%d}`, slot, offering, foreign.ID), http.StatusForbidden, handlers.CodeForbidden},
		{"unknown offering", fmt.Sprintf(`{"date":"2030-01-01","timeSlotId":%d,"offeringId":999,"passInstanceId":%d}`, slot, foreign.ID), http.StatusNotFound, handlers.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.post(t, customer, tc.body)

			assert.Equal(t, tc.status, w.Code, w.Body.String())
			var resp handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tc.code, resp.Code)
		})
	}
	assert.Zero(t, env.store.Counts().Reservations)
}

func TestHandleRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/redeem", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
