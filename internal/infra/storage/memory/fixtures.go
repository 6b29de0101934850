package memory

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Studio типовой каталог студии для тестов сценариев
type Studio struct {
	SingleBay   domain.OfferingType
	FullRoom    domain.OfferingType
	EveningBay  domain.OfferingType
	FivePass    domain.PassType
	MorningPass domain.PassType
	Morning     domain.TimeSlot // вторник 10:00-11:00
	Evening     domain.TimeSlot // вторник 18:00-19:00
	Save10      domain.Coupon
}

// StudioDate вторник, на который рассчитан каталог Studio
var StudioDate = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

// SeedStudio заполняет хранилище типовым каталогом
// Идентификаторы фиксированы, автоинкремент продолжается со 100
func (s *Store) SeedStudio() Studio {
	studio := Studio{
		SingleBay: s.AddOffering(domain.OfferingType{
			ID: 7, Name: "Barra individual", ResourceCost: domain.SingleBayCost,
			PriceCents: 1000, Schedule: domain.ScheduleAny, Active: true,
		}),
		FullRoom: s.AddOffering(domain.OfferingType{
			ID: 8, Name: "Sala completa", ResourceCost: domain.FullRoomCost,
			PriceCents: 2500, Schedule: domain.ScheduleAny, Active: true,
		}),
		EveningBay: s.AddOffering(domain.OfferingType{
			ID: 9, Name: "Barra tarde", ResourceCost: domain.SingleBayCost,
			PriceCents: 1200, Schedule: domain.ScheduleEvening, Active: true,
		}),
		FivePass: s.AddPassType(domain.PassType{
			ID: 20, Name: "Bono 5 clases", ClassCount: 5, ValidityDays: 30,
			PriceCents: 4500, Schedule: domain.ScheduleAny, Active: true,
		}),
		MorningPass: s.AddPassType(domain.PassType{
			ID: 21, Name: "Bono mañanas", ClassCount: 4, ValidityDays: 30,
			PriceCents: 3200, Schedule: domain.ScheduleMorning, Active: true,
		}),
		Morning: s.AddTimeSlot(domain.TimeSlot{
			ID: 30, DayOfWeek: time.Tuesday,
			StartTime: types.MustTimeString("10:00"), EndTime: types.MustTimeString("11:00"), Active: true,
		}),
		Evening: s.AddTimeSlot(domain.TimeSlot{
			ID: 31, DayOfWeek: time.Tuesday,
			StartTime: types.MustTimeString("18:00"), EndTime: types.MustTimeString("19:00"), Active: true,
		}),
		Save10: s.AddCoupon(domain.Coupon{
			ID: 40, Code: "SAVE10", DiscountType: domain.DiscountPercent, DiscountValue: 10,
			MaxPerCustomer: 1, Active: true,
		}),
	}

	s.mu.Lock()
	if s.data.nextID < 100 {
		s.data.nextID = 100
	}
	s.mu.Unlock()

	return studio
}
