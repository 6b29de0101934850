package reservations

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/service/entitlement"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// morningStart начало слота studio.Morning в StudioDate
var morningStart = time.Date(2030, time.January, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc    *Service
	store  *memory.Store
	studio memory.Studio
	ledger *entitlement.Service
	clock  *fixedClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	studio := store.SeedStudio()
	clock := &fixedClock{now: morningStart.Add(-10 * 24 * time.Hour)}
	log := logger.NewNop()

	avail := availability.NewServiceWithTime(store.Catalog(), store.Reservations(), availability.Config{}, clock, log)
	ledger := entitlement.NewServiceWithTime(store.Passes(), store.Catalog(), types.MustTimeString("14:00"), clock, log)
	svc := NewServiceWithTime(
		store.Reservations(), store.Catalog(), store.Outbox(), avail, ledger, store.TxManager(),
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		Config{CancellationCutoff: 24 * time.Hour}, clock, log,
	)
	return &testEnv{svc: svc, store: store, studio: studio, ledger: ledger, clock: clock}
}

func directRequest(slot domain.TimeSlot, offering domain.OfferingType) *models.CreateRequest {
	return &models.CreateRequest{
		CustomerID:     uuid.New(),
		CustomerEmail:  "client@example.com",
		Date:           memory.StudioDate,
		TimeSlotID:     slot.ID,
		OfferingID:     offering.ID,
		PaymentMethod:  domain.PaymentDirect,
		PricePaidCents: offering.PriceCents,
	}
}

func TestService_Create_SingleBaysFillSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.SingleBay))
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationConfirmed, res.State)
		assert.Equal(t, 1, res.ResourceCost)
	}

	_, err := env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.SingleBay))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 3, env.store.Counts().Reservations)
	assert.Len(t, env.store.TasksOfKind(domain.TaskProvisionAccess), 3)
}

func TestService_Create_FullRoomExcludesSingleBay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.FullRoom))
	require.NoError(t, err)
	assert.Equal(t, 3, res.ResourceCost)

	_, err = env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.SingleBay))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestService_Create_ConcurrentLastBay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.SingleBay))
		require.NoError(t, err)
	}

	const n = 16
	var succeeded, rejected int32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.SingleBay))
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, domain.ErrCapacityExceeded):
				atomic.AddInt32(&rejected, 1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(n-1), rejected)

	reserved, err := env.store.Reservations().SumActiveResourceCost(ctx, memory.StudioDate, env.studio.Morning.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reserved)
}

func TestService_Create_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("unknown offering", func(t *testing.T) {
		req := directRequest(env.studio.Morning, env.studio.SingleBay)
		req.OfferingID = 9999
		_, err := env.svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrOfferingNotFound)
	})

	t.Run("slot on another day", func(t *testing.T) {
		req := directRequest(env.studio.Morning, env.studio.SingleBay)
		req.Date = memory.StudioDate.AddDate(0, 0, 2)
		_, err := env.svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("pass method without pass", func(t *testing.T) {
		req := directRequest(env.studio.Morning, env.studio.SingleBay)
		req.PaymentMethod = domain.PaymentPass
		_, err := env.svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("slot already started", func(t *testing.T) {
		saved := env.clock.now
		env.clock.now = morningStart
		defer func() { env.clock.now = saved }()

		_, err := env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.SingleBay))
		assert.ErrorIs(t, err, domain.ErrSlotInPast)
	})

	assert.Equal(t, 0, env.store.Counts().Reservations)
}

func TestService_Create_WithPass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := uuid.New()

	pass, err := env.ledger.Instantiate(ctx, customer, "", env.studio.MorningPass.ID)
	require.NoError(t, err)

	req := &models.CreateRequest{
		CustomerID:     customer,
		Date:           memory.StudioDate,
		TimeSlotID:     env.studio.Morning.ID,
		OfferingID:     env.studio.SingleBay.ID,
		PaymentMethod:  domain.PaymentPass,
		PassInstanceID: ptr.Ptr(pass.ID),
		PricePaidCents: 999,
	}
	res, err := env.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.PricePaidCents)
	assert.Equal(t, pass.ID, *res.PassInstanceID)

	debited, err := env.store.Passes().GetByID(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, debited.ClassesRemaining)
	assert.NotNil(t, debited.ActivatedAt)

	evening := *req
	evening.TimeSlotID = env.studio.Evening.ID
	_, err = env.svc.Create(ctx, &evening)
	assert.ErrorIs(t, err, domain.ErrScheduleMismatch)

	foreign := *req
	foreign.CustomerID = uuid.New()
	_, err = env.svc.Create(ctx, &foreign)
	assert.ErrorIs(t, err, ErrAccessDenied)

	unchanged, err := env.store.Passes().GetByID(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unchanged.ClassesRemaining)
	assert.Equal(t, 1, env.store.Counts().Reservations)
}

func TestService_Create_FullSlotDoesNotDebitPass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := uuid.New()

	_, err := env.svc.Create(ctx, directRequest(env.studio.Morning, env.studio.FullRoom))
	require.NoError(t, err)

	pass, err := env.ledger.Instantiate(ctx, customer, "", env.studio.FivePass.ID)
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, &models.CreateRequest{
		CustomerID:     customer,
		Date:           memory.StudioDate,
		TimeSlotID:     env.studio.Morning.ID,
		OfferingID:     env.studio.SingleBay.ID,
		PaymentMethod:  domain.PaymentPass,
		PassInstanceID: ptr.Ptr(pass.ID),
	})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	got, err := env.store.Passes().GetByID(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.ClassesRemaining)
	assert.Nil(t, got.ActivatedAt)
}

func TestService_Cancel_Window(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"cutoff plus one minute", morningStart.Add(-24*time.Hour - time.Minute), nil},
		{"cutoff minus one minute", morningStart.Add(-24*time.Hour + time.Minute), domain.ErrCancellationWindowExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			req := directRequest(env.studio.Morning, env.studio.SingleBay)
			res, err := env.svc.Create(ctx, req)
			require.NoError(t, err)

			env.clock.now = tt.now
			cancelled, err := env.svc.Cancel(ctx, res.ID, req.CustomerID)
			stored, getErr := env.store.Reservations().GetByID(ctx, res.ID)
			require.NoError(t, getErr)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.ReservationConfirmed, stored.State)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.ReservationCancelled, cancelled.State)
			assert.Equal(t, domain.ReservationCancelled, stored.State)
		})
	}
}

func TestService_Cancel_CreditsPass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := uuid.New()

	pass, err := env.ledger.Instantiate(ctx, customer, "", env.studio.FivePass.ID)
	require.NoError(t, err)

	var last *domain.Reservation
	for i := 0; i < 5; i++ {
		slot := env.studio.Morning
		if i%2 == 1 {
			slot = env.studio.Evening
		}
		last, err = env.svc.Create(ctx, &models.CreateRequest{
			CustomerID:     customer,
			Date:           memory.StudioDate,
			TimeSlotID:     slot.ID,
			OfferingID:     env.studio.SingleBay.ID,
			PaymentMethod:  domain.PaymentPass,
			PassInstanceID: ptr.Ptr(pass.ID),
		})
		require.NoError(t, err)
	}

	exhausted, err := env.store.Passes().GetByID(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PassExhausted, exhausted.State)

	_, err = env.svc.Cancel(ctx, last.ID, customer)
	require.NoError(t, err)

	restored, err := env.store.Passes().GetByID(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.ClassesRemaining)
	assert.Equal(t, domain.PassActive, restored.State)
	assert.Equal(t, *exhausted.ExpiresAt, *restored.ExpiresAt)
}

func TestService_Cancel_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := directRequest(env.studio.Morning, env.studio.SingleBay)
	res, err := env.svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, res.ID, uuid.New())
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.Cancel(ctx, 9999, req.CustomerID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = env.svc.Cancel(ctx, res.ID, req.CustomerID)
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, res.ID, req.CustomerID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestService_Get_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := directRequest(env.studio.Evening, env.studio.EveningBay)
	res, err := env.svc.Create(ctx, req)
	require.NoError(t, err)

	got, err := env.svc.Get(ctx, res.ID, req.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", got.CustomerEmail)

	_, err = env.svc.Get(ctx, res.ID, uuid.New())
	assert.ErrorIs(t, err, ErrAccessDenied)

	list, err := env.svc.ListForCustomer(ctx, req.CustomerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
