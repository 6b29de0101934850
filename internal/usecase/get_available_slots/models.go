package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Request модель запроса на получение доступности слотов
type Request struct {
	Date       time.Time // Дата (без времени)
	OfferingID *int64    // Если задан, Bookable считается для этой услуги
}

// Response модель ответа со слотами дня
type Response struct {
	Date      time.Time
	TotalBays int
	Slots     []Slot
}

// Slot занятость одного слота
type Slot struct {
	TimeSlotID    int64
	StartTime     types.TimeString
	EndTime       types.TimeString
	AvailableBays int
	TotalBays     int
	Bookable      bool // можно ли забронировать услугу из запроса (или одну барру)
}
