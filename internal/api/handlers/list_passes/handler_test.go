package list_passes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/service/entitlement"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestHandleShowsEffectiveState(t *testing.T) {
	store := memory.NewStore()
	studio := store.SeedStudio()
	c := &clock{now: memory.StudioDate}
	ledger := entitlement.NewServiceWithTime(store.Passes(), store.Catalog(), types.MustTimeString("14:00"), c, logger.NewNop())
	ctx := context.Background()
	customer := uuid.New()

	pass, err := ledger.Instantiate(ctx, customer, "ana@example.com", studio.FivePass.ID)
	require.NoError(t, err)
	_, err = ledger.Debit(ctx, pass.ID, customer, types.MustTimeString("10:00"))
	require.NoError(t, err)
	_, err = ledger.Instantiate(ctx, uuid.New(), "other@example.com", studio.FivePass.ID)
	require.NoError(t, err)

	// срок действия (30 дней от первого использования) истёк
	c.now = memory.StudioDate.Add(31 * 24 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/passes", nil)
	req = req.WithContext(middleware.WithCustomer(req.Context(), customer, ""))
	w := httptest.NewRecorder()
	NewHandler(ledger, logger.NewNop()).Handle(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var views []handlers.PassView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, pass.ID, views[0].ID)
	assert.Equal(t, 4, views[0].ClassesRemaining)
	assert.Equal(t, "expired", views[0].State)
	assert.NotNil(t, views[0].ActivatedAt)
	assert.NotNil(t, views[0].ExpiresAt)
}

func TestHandleRequiresCustomer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/passes", nil)
	w := httptest.NewRecorder()

	NewHandler(nil, logger.NewNop()).Handle(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
