package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Checkout metadata keys
const (
	MetaCustomerID    = "customer_id"
	MetaCustomerEmail = "customer_email"
	MetaItemType      = "item_type"
	MetaItemID        = "item_id"
	MetaDate          = "date"
	MetaTimeSlotID    = "time_slot_id"
	MetaOfferingID    = "offering_id"
	MetaCouponID      = "coupon_id"
)

// PaymentIntent что именно оплачивается: бронирование или абонемент
type PaymentIntent interface {
	ItemType() ItemType
	ItemID() int64
}

// ReservationIntent прямая оплата бронирования
type ReservationIntent struct {
	Date       time.Time
	TimeSlotID int64
	OfferingID int64
}

func (ReservationIntent) ItemType() ItemType { return ItemReservation }

func (i ReservationIntent) ItemID() int64 { return i.OfferingID }

// PassIntent покупка абонемента
type PassIntent struct {
	PassTypeID int64
}

func (PassIntent) ItemType() ItemType { return ItemPass }

func (i PassIntent) ItemID() int64 { return i.PassTypeID }

// CheckoutMetadata контекст покупки, который проходит через платёжного провайдера
// и возвращается в вебхуке
type CheckoutMetadata struct {
	CustomerID    uuid.UUID
	CustomerEmail string
	Intent        PaymentIntent
	CouponID      *int64
}

// Encode сериализует метаданные в плоский map строк
func (m CheckoutMetadata) Encode() map[string]string {
	out := map[string]string{
		MetaCustomerID: m.CustomerID.String(),
		MetaItemType:   string(m.Intent.ItemType()),
		MetaItemID:     strconv.FormatInt(m.Intent.ItemID(), 10),
	}
	if m.CustomerEmail != "" {
		out[MetaCustomerEmail] = m.CustomerEmail
	}
	if ri, ok := m.Intent.(ReservationIntent); ok {
		out[MetaDate] = ri.Date.Format(DateFormat)
		out[MetaTimeSlotID] = strconv.FormatInt(ri.TimeSlotID, 10)
		out[MetaOfferingID] = strconv.FormatInt(ri.OfferingID, 10)
	}
	if m.CouponID != nil {
		out[MetaCouponID] = strconv.FormatInt(*m.CouponID, 10)
	}
	return out
}

// DecodeCheckoutMetadata восстанавливает метаданные
// Любое отсутствующее или некорректное поле даёт ErrInvalidMetadata
func DecodeCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	var meta CheckoutMetadata

	customerID, err := uuid.Parse(raw[MetaCustomerID])
	if err != nil {
		return meta, fmt.Errorf("%w: %s: %v", ErrInvalidMetadata, MetaCustomerID, err)
	}
	meta.CustomerID = customerID
	meta.CustomerEmail = raw[MetaCustomerEmail]

	itemType := ItemType(raw[MetaItemType])
	if err := itemType.Validate(); err != nil {
		return meta, err
	}

	itemID, err := parseID(raw, MetaItemID)
	if err != nil {
		return meta, err
	}

	switch itemType {
	case ItemReservation:
		date, err := time.Parse(DateFormat, raw[MetaDate])
		if err != nil {
			return meta, fmt.Errorf("%w: %s: %v", ErrInvalidMetadata, MetaDate, err)
		}
		slotID, err := parseID(raw, MetaTimeSlotID)
		if err != nil {
			return meta, err
		}
		offeringID := itemID
		if _, ok := raw[MetaOfferingID]; ok {
			offeringID, err = parseID(raw, MetaOfferingID)
			if err != nil {
				return meta, err
			}
		}
		meta.Intent = ReservationIntent{Date: date, TimeSlotID: slotID, OfferingID: offeringID}
	case ItemPass:
		meta.Intent = PassIntent{PassTypeID: itemID}
	}

	if v, ok := raw[MetaCouponID]; ok && v != "" {
		couponID, err := parseID(raw, MetaCouponID)
		if err != nil {
			return meta, err
		}
		meta.CouponID = &couponID
	}

	return meta, nil
}

func parseID(raw map[string]string, key string) (int64, error) {
	v, ok := raw[key]
	if !ok || v == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidMetadata, key)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrInvalidMetadata, key, v)
	}
	return id, nil
}
