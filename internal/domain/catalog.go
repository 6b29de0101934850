package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Schedule ограничение услуги или абонемента по части дня
type Schedule string

const (
	ScheduleAny     Schedule = "any"
	ScheduleMorning Schedule = "morning" // слоты, начинающиеся до morning cutoff
	ScheduleEvening Schedule = "evening" // слоты, начинающиеся с morning cutoff
)

// Allows проверяет, что слот с началом start подходит под ограничение
func (s Schedule) Allows(start types.TimeString, morningCutoff types.TimeString) bool {
	switch s {
	case ScheduleMorning:
		return start.IsBefore(morningCutoff)
	case ScheduleEvening:
		return !start.IsBefore(morningCutoff)
	default:
		return true
	}
}

// OfferingType вид разового входа (одна барра, весь зал)
type OfferingType struct {
	ID           int64
	Name         string
	ResourceCost int // сколько барр занимает бронирование
	PriceCents   int64
	Schedule     Schedule
	Active       bool
}

// IsFullRoom returns true if the offering books the whole room
func (o *OfferingType) IsFullRoom(totalBays int) bool {
	return o.ResourceCost >= totalBays
}

// PassType шаблон абонемента (бона)
type PassType struct {
	ID           int64
	Name         string
	ClassCount   int
	ValidityDays int // отсчитывается от первого использования
	PriceCents   int64
	Schedule     Schedule
	Active       bool
}

// Validity returns the validity period of an activated pass
func (p *PassType) Validity() time.Duration {
	return time.Duration(p.ValidityDays) * 24 * time.Hour
}

// TimeSlot еженедельный шаблон слота; один физический слот на (день недели, время начала)
type TimeSlot struct {
	ID        int64
	DayOfWeek time.Weekday
	StartTime types.TimeString
	EndTime   types.TimeString
	Active    bool
}

// MatchesDate returns true if the slot recurs on the given calendar date
func (s *TimeSlot) MatchesDate(date time.Time) bool {
	return s.DayOfWeek == date.Weekday()
}

// StartsAt возвращает момент начала слота в конкретную дату
func (s *TimeSlot) StartsAt(date time.Time, loc *time.Location) (time.Time, error) {
	at, err := s.StartTime.On(date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("slot id=%d start: %w", s.ID, err)
	}
	return at, nil
}

// EndsAt возвращает момент окончания слота в конкретную дату
func (s *TimeSlot) EndsAt(date time.Time, loc *time.Location) (time.Time, error) {
	at, err := s.EndTime.On(date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("slot id=%d end: %w", s.ID, err)
	}
	return at, nil
}
