package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *memory.Store, memory.Studio, *fixedClock) {
	t.Helper()
	store := memory.NewStore()
	studio := store.SeedStudio()
	clock := &fixedClock{now: time.Date(2029, time.December, 20, 9, 0, 0, 0, time.UTC)}
	svc := NewServiceWithTime(store.Passes(), store.Catalog(), types.MustTimeString("14:00"), clock, logger.NewNop())
	return svc, store, studio, clock
}

func TestService_PassLifecycle(t *testing.T) {
	svc, _, studio, clock := newTestService(t)
	ctx := context.Background()
	customer := uuid.New()
	morning := studio.Morning.StartTime

	pass, err := svc.Instantiate(ctx, customer, "ana@example.com", studio.FivePass.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, pass.ClassesRemaining)
	assert.Nil(t, pass.ActivatedAt)
	assert.Nil(t, pass.ExpiresAt)

	first, err := svc.Debit(ctx, pass.ID, customer, morning)
	require.NoError(t, err)
	require.NotNil(t, first.ExpiresAt)
	assert.Equal(t, clock.now.Add(30*24*time.Hour), *first.ExpiresAt)

	for i := 0; i < 4; i++ {
		clock.now = clock.now.Add(time.Hour)
		_, err := svc.Debit(ctx, pass.ID, customer, morning)
		require.NoError(t, err)
	}

	_, err = svc.Debit(ctx, pass.ID, customer, morning)
	assert.ErrorIs(t, err, domain.ErrEntitlementExhausted)

	credited, err := svc.Credit(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credited.ClassesRemaining)
	assert.Equal(t, domain.PassActive, credited.State)
	assert.Equal(t, *first.ExpiresAt, *credited.ExpiresAt)
}

func TestService_DebitRejections(t *testing.T) {
	svc, _, studio, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	morningPass, err := svc.Instantiate(ctx, owner, "", studio.MorningPass.ID)
	require.NoError(t, err)

	t.Run("evening slot with morning pass", func(t *testing.T) {
		_, err := svc.Debit(ctx, morningPass.ID, owner, studio.Evening.StartTime)
		assert.ErrorIs(t, err, domain.ErrScheduleMismatch)
	})

	t.Run("foreign customer", func(t *testing.T) {
		_, err := svc.Debit(ctx, morningPass.ID, uuid.New(), studio.Morning.StartTime)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown pass", func(t *testing.T) {
		_, err := svc.Debit(ctx, 9999, owner, studio.Morning.StartTime)
		assert.ErrorIs(t, err, ErrPassNotFound)
	})

	t.Run("expired pass", func(t *testing.T) {
		_, err := svc.Debit(ctx, morningPass.ID, owner, studio.Morning.StartTime)
		require.NoError(t, err)

		clock.now = clock.now.Add(31 * 24 * time.Hour)
		_, err = svc.Debit(ctx, morningPass.ID, owner, studio.Morning.StartTime)
		assert.ErrorIs(t, err, domain.ErrEntitlementExhausted)
	})
}

func TestService_EligiblePass(t *testing.T) {
	svc, _, studio, _ := newTestService(t)
	ctx := context.Background()
	customer := uuid.New()

	_, err := svc.EligiblePass(ctx, customer, studio.Morning.StartTime)
	assert.ErrorIs(t, err, domain.ErrEntitlementExhausted)

	fresh, err := svc.Instantiate(ctx, customer, "", studio.FivePass.ID)
	require.NoError(t, err)
	activated, err := svc.Instantiate(ctx, customer, "", studio.FivePass.ID)
	require.NoError(t, err)
	_, err = svc.Debit(ctx, activated.ID, customer, studio.Morning.StartTime)
	require.NoError(t, err)

	got, err := svc.EligiblePass(ctx, customer, studio.Morning.StartTime)
	require.NoError(t, err)
	assert.Equal(t, activated.ID, got.ID, "activated pass expires first")
	assert.NotEqual(t, fresh.ID, got.ID)

	morningOnly, err := svc.Instantiate(ctx, uuid.New(), "", studio.MorningPass.ID)
	require.NoError(t, err)
	_, err = svc.EligiblePass(ctx, morningOnly.CustomerID, studio.Evening.StartTime)
	assert.ErrorIs(t, err, domain.ErrEntitlementExhausted)
}

func TestService_ListForCustomer_EffectiveState(t *testing.T) {
	svc, _, studio, clock := newTestService(t)
	ctx := context.Background()
	customer := uuid.New()

	pass, err := svc.Instantiate(ctx, customer, "", studio.FivePass.ID)
	require.NoError(t, err)
	_, err = svc.Debit(ctx, pass.ID, customer, studio.Morning.StartTime)
	require.NoError(t, err)

	clock.now = clock.now.Add(40 * 24 * time.Hour)
	list, err := svc.ListForCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PassExpired, list[0].State)
}
