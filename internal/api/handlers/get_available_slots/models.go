package get_available_slots

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date      string          `json:"date"`
	TotalBays int             `json:"totalBays"`
	Slots     []AvailableSlot `json:"slots"`
}

// AvailableSlot занятость одного слота
type AvailableSlot struct {
	TimeSlotID    int64  `json:"timeSlotId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	AvailableBays int    `json:"availableBays"`
	TotalBays     int    `json:"totalBays"`
	Bookable      bool   `json:"bookable"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			TimeSlotID:    slot.TimeSlotID,
			StartTime:     slot.StartTime.String(),
			EndTime:       slot.EndTime.String(),
			AvailableBays: slot.AvailableBays,
			TotalBays:     slot.TotalBays,
			Bookable:      slot.Bookable,
		}
	}

	return &AvailableSlotsResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		TotalBays: resp.TotalBays,
		Slots:     slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(dateStr, offeringIDStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, errInvalidDate
	}

	req := &getAvailableSlots.Request{Date: date}
	if offeringIDStr != "" {
		offeringID, err := strconv.ParseInt(offeringIDStr, 10, 64)
		if err != nil || offeringID <= 0 {
			return nil, errInvalidOfferingID
		}
		req.OfferingID = &offeringID
	}
	return req, nil
}
