package domain

import "time"

// SlotAvailability доступность одного слота на конкретную дату
type SlotAvailability struct {
	Slot         TimeSlot
	Date         time.Time
	TotalBays    int
	ReservedBays int
	StartsAt     time.Time
}

// AvailableBays returns the number of unreserved bays (never negative)
func (a *SlotAvailability) AvailableBays() int {
	return RemainingBays(a.TotalBays, a.ReservedBays)
}

// IsBookable проверяет, что слот ещё не начался и в нём хватает мест
func (a *SlotAvailability) IsBookable(now time.Time, required int) bool {
	return IsBookable(a.StartsAt, now, a.AvailableBays(), required)
}

// RemainingBays вычисляет свободные места по сумме resourceCost активных бронирований
func RemainingBays(totalBays, reservedBays int) int {
	free := totalBays - reservedBays
	if free < 0 {
		return 0
	}
	return free
}

// ReservedBays суммирует resourceCost активных бронирований
func ReservedBays(reservations []*Reservation) int {
	total := 0
	for _, r := range reservations {
		if r.IsActive() {
			total += r.ResourceCost
		}
	}
	return total
}

// IsBookable слот бронируется, если он начинается строго позже now
// и свободных мест не меньше требуемого
func IsBookable(startsAt, now time.Time, available, required int) bool {
	if !startsAt.After(now) {
		return false
	}
	return available >= required
}
