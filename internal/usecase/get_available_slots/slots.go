package get_available_slots

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// buildSlots собирает ответ по занятости дня
// Слот бронируется, если он ещё не начался, в нём хватает мест и он подходит
// под ограничение услуги по части дня
func buildSlots(
	day []*domain.SlotAvailability,
	offering *domain.OfferingType,
	morningCutoff types.TimeString,
	now time.Time,
) []Slot {
	required := domain.SingleBayCost
	schedule := domain.ScheduleAny
	if offering != nil {
		required = offering.ResourceCost
		schedule = offering.Schedule
	}

	result := make([]Slot, 0, len(day))
	for _, a := range day {
		result = append(result, Slot{
			TimeSlotID:    a.Slot.ID,
			StartTime:     a.Slot.StartTime,
			EndTime:       a.Slot.EndTime,
			AvailableBays: a.AvailableBays(),
			TotalBays:     a.TotalBays,
			Bookable:      a.IsBookable(now, required) && schedule.Allows(a.Slot.StartTime, morningCutoff),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})
	return result
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня в часовом поясе студии
func isDateInPast(date, now time.Time, loc *time.Location) bool {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return domain.DateOnly(date).Before(today)
}
