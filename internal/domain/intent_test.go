package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

func TestCheckoutMetadata_Reservation(t *testing.T) {
	meta := CheckoutMetadata{
		CustomerID:    uuid.New(),
		CustomerEmail: "client@example.com",
		Intent: ReservationIntent{
			Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			TimeSlotID: 4,
			OfferingID: 2,
		},
		CouponID:      ptr.Ptr(int64(11)),
	}

	raw := meta.Encode()
	assert.Equal(t, "reservation", raw[MetaItemType])
	assert.Equal(t, "2026-03-10", raw[MetaDate])

	decoded, err := DecodeCheckoutMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, meta, decoded)
}

func TestCheckoutMetadata_Pass(t *testing.T) {
	meta := CheckoutMetadata{CustomerID: uuid.New(), Intent: PassIntent{PassTypeID: 3}}

	raw := meta.Encode()
	_, hasDate := raw[MetaDate]
	assert.False(t, hasDate)

	decoded, err := DecodeCheckoutMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, meta, decoded)
}

func TestDecodeCheckoutMetadata_Invalid(t *testing.T) {
	customer := uuid.New().String()

	cases := map[string]map[string]string{
		"bad customer":      {MetaCustomerID: "nope", MetaItemType: "pass", MetaItemID: "1"},
		"unknown item type": {MetaCustomerID: customer, MetaItemType: "gift", MetaItemID: "1"},
		"missing item id":   {MetaCustomerID: customer, MetaItemType: "pass"},
		"missing date":      {MetaCustomerID: customer, MetaItemType: "reservation", MetaItemID: "1", MetaTimeSlotID: "2"},
		"bad slot":          {MetaCustomerID: customer, MetaItemType: "reservation", MetaItemID: "1", MetaDate: "2026-03-10", MetaTimeSlotID: "x"},
		"bad coupon":        {MetaCustomerID: customer, MetaItemType: "pass", MetaItemID: "1", MetaCouponID: "-3"},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCheckoutMetadata(raw)
			assert.ErrorIs(t, err, ErrInvalidMetadata)
		})
	}
}
