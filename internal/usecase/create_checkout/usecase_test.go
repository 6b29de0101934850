package create_checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/stripe"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/service/coupons"
	couponModels "github.com/m04kA/SMC-StudioBooking/internal/service/coupons/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type fakeProvider struct {
	calls []*stripe.CheckoutParams
	err   error
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutParams) (*domain.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, params)
	return &domain.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

type testEnv struct {
	uc       *UseCase
	store    *memory.Store
	studio   memory.Studio
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	studio := store.SeedStudio()
	clock := &fixedClock{now: memory.StudioDate.Add(-48 * time.Hour)}
	log := logger.NewNop()

	avail := availability.NewServiceWithTime(store.Catalog(), store.Reservations(), availability.Config{}, clock, log)
	provider := &fakeProvider{}
	uc := NewUseCase(
		store.Catalog(), avail, coupons.NewServiceWithTime(store.Coupons(), clock, log), provider,
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		Config{Currency: "eur", SuccessURL: "https://studio.example/ok", CancelURL: "https://studio.example/cancel"},
		log,
	)
	return &testEnv{uc: uc, store: store, studio: studio, provider: provider}
}

func reservationRequest(studio memory.Studio) *Request {
	return &Request{
		CustomerID:    uuid.New(),
		CustomerEmail: "client@example.com",
		ItemType:      domain.ItemReservation,
		ItemID:        studio.SingleBay.ID,
		Date:          ptr.Ptr(memory.StudioDate),
		TimeSlotID:    ptr.Ptr(studio.Morning.ID),
	}
}

func TestUseCase_Reservation(t *testing.T) {
	env := newTestEnv(t)
	req := reservationRequest(env.studio)

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_1", resp.RedirectURL)
	assert.Equal(t, int64(1000), resp.BasePriceCents)
	assert.Equal(t, int64(1000), resp.FinalPriceCents)
	assert.Nil(t, resp.CouponID)

	require.Len(t, env.provider.calls, 1)
	params := env.provider.calls[0]
	assert.Equal(t, int64(1000), params.AmountCents)
	assert.Equal(t, "eur", params.Currency)
	assert.Equal(t, "https://studio.example/ok?session_id={CHECKOUT_SESSION_ID}", params.SuccessURL)
	assert.Equal(t, "https://studio.example/cancel", params.CancelURL)

	meta, err := domain.DecodeCheckoutMetadata(params.Metadata)
	require.NoError(t, err)
	assert.Equal(t, req.CustomerID, meta.CustomerID)
	assert.Equal(t, "client@example.com", meta.CustomerEmail)
	assert.Equal(t, domain.ReservationIntent{
		Date:       memory.StudioDate,
		TimeSlotID: env.studio.Morning.ID,
		OfferingID: env.studio.SingleBay.ID,
	}, meta.Intent)
}

func TestUseCase_PassWithCoupon(t *testing.T) {
	env := newTestEnv(t)
	req := &Request{
		CustomerID: uuid.New(),
		ItemType:   domain.ItemPass,
		ItemID:     env.studio.FivePass.ID,
		CouponCode: ptr.Ptr(" save10 "),
	}

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), resp.BasePriceCents)
	assert.Equal(t, int64(4050), resp.FinalPriceCents)
	require.NotNil(t, resp.CouponID)
	assert.Equal(t, env.studio.Save10.ID, *resp.CouponID)

	meta, err := domain.DecodeCheckoutMetadata(env.provider.calls[0].Metadata)
	require.NoError(t, err)
	assert.Equal(t, domain.PassIntent{PassTypeID: env.studio.FivePass.ID}, meta.Intent)
	require.NotNil(t, meta.CouponID)
	assert.Equal(t, env.studio.Save10.ID, *meta.CouponID)
}

func TestUseCase_CouponRejected(t *testing.T) {
	env := newTestEnv(t)
	req := reservationRequest(env.studio)
	req.CouponCode = ptr.Ptr("NOPE")

	_, err := env.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrCouponRejected)

	var couponErr *CouponError
	require.True(t, errors.As(err, &couponErr))
	assert.Equal(t, couponModels.ReasonNotFound, couponErr.Reason)
	assert.Empty(t, env.provider.calls)
}

func TestUseCase_FullDiscountCouponRejected(t *testing.T) {
	env := newTestEnv(t)
	env.store.AddCoupon(domain.Coupon{
		ID: 41, Code: "FREE", DiscountType: domain.DiscountPercent, DiscountValue: 100,
		MaxPerCustomer: 1, Active: true,
	})
	req := reservationRequest(env.studio)
	req.CouponCode = ptr.Ptr("free")

	_, err := env.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrCouponRejected)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	var couponErr *CouponError
	require.True(t, errors.As(err, &couponErr))
	assert.Equal(t, couponModels.ReasonFullDiscount, couponErr.Reason)
	assert.Empty(t, env.provider.calls)
}

func TestUseCase_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// весь зал занят
	_, err := env.store.Reservations().Create(ctx, &domain.Reservation{
		CustomerID: uuid.New(), Date: memory.StudioDate, TimeSlotID: env.studio.Morning.ID,
		OfferingTypeID: env.studio.FullRoom.ID, ResourceCost: 3,
		PaymentMethod: domain.PaymentDirect, State: domain.ReservationConfirmed,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"no customer", func(r *Request) { r.CustomerID = uuid.Nil }, ErrInvalidInput},
		{"unknown item type", func(r *Request) { r.ItemType = "gift" }, ErrInvalidInput},
		{"missing slot", func(r *Request) { r.TimeSlotID = nil }, ErrInvalidInput},
		{"unknown offering", func(r *Request) { r.ItemID = 999 }, ErrOfferingNotFound},
		{"unknown slot", func(r *Request) { r.TimeSlotID = ptr.Ptr(int64(999)) }, ErrSlotNotFound},
		{"slot is full", func(r *Request) {}, domain.ErrCapacityExceeded},
		{"evening offering in the morning", func(r *Request) {
			r.ItemID = env.studio.EveningBay.ID
			r.TimeSlotID = ptr.Ptr(env.studio.Morning.ID)
		}, domain.ErrScheduleMismatch},
		{"unknown pass type", func(r *Request) {
			r.ItemType, r.ItemID, r.Date, r.TimeSlotID = domain.ItemPass, 999, nil, nil
		}, ErrPassTypeNotFound},
		{"pass with date", func(r *Request) { r.ItemType = domain.ItemPass }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := reservationRequest(env.studio)
			tt.mutate(req)
			_, err := env.uc.Execute(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, env.provider.calls)
}

func TestUseCase_ProviderDown(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = stripe.ErrUpstream

	_, err := env.uc.Execute(context.Background(), reservationRequest(env.studio))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestWithSessionID(t *testing.T) {
	assert.Equal(t, "https://a.example/ok?session_id={CHECKOUT_SESSION_ID}", withSessionID("https://a.example/ok"))
	assert.Equal(t, "https://a.example/ok?lang=es&session_id={CHECKOUT_SESSION_ID}", withSessionID("https://a.example/ok?lang=es"))
	assert.Equal(t, "https://a.example/ok?s={CHECKOUT_SESSION_ID}", withSessionID("https://a.example/ok?s={CHECKOUT_SESSION_ID}"))
	assert.Equal(t, "", withSessionID(""))
}
