package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Config параметры студии
type Config struct {
	TotalBays     int
	Location      *time.Location
	MorningCutoff types.TimeString
}

// Service движок доступности: чистая агрегация по бронированиям, без собственного состояния
type Service struct {
	catalogRepo     CatalogRepository
	reservationRepo ReservationRepository
	cfg             Config
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	catalogRepo CatalogRepository,
	reservationRepo ReservationRepository,
	cfg Config,
	logger Logger,
) *Service {
	return NewServiceWithTime(catalogRepo, reservationRepo, cfg, &RealTimeProvider{}, logger)
}

// NewServiceWithTime как NewService, но с заданным источником времени
func NewServiceWithTime(
	catalogRepo CatalogRepository,
	reservationRepo ReservationRepository,
	cfg Config,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	if cfg.TotalBays <= 0 {
		cfg.TotalBays = domain.DefaultTotalBays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MorningCutoff.IsZero() {
		cfg.MorningCutoff = types.MustTimeString(domain.DefaultMorningCutoff)
	}
	return &Service{
		catalogRepo:     catalogRepo,
		reservationRepo: reservationRepo,
		cfg:             cfg,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// TotalBays returns the number of bays in the studio
func (s *Service) TotalBays() int {
	return s.cfg.TotalBays
}

// MorningCutoff returns the boundary between morning and evening slots
func (s *Service) MorningCutoff() types.TimeString {
	return s.cfg.MorningCutoff
}

// Location returns the studio time zone
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// AvailableCapacity свободные места в слоте на дату
// Отсутствие бронирований означает полную вместимость
func (s *Service) AvailableCapacity(ctx context.Context, date time.Time, timeSlotID int64) (int, error) {
	reserved, err := s.reservationRepo.SumActiveResourceCost(ctx, date, timeSlotID)
	if err != nil {
		s.logger.Error("AvailableCapacity: date=%s, slot=%d: %v", date.Format(domain.DateFormat), timeSlotID, err)
		return 0, fmt.Errorf("%w: AvailableCapacity - sum reserved: %w", ErrInternal, err)
	}
	return domain.RemainingBays(s.cfg.TotalBays, reserved), nil
}

// IsBookable проверяет, что слот ещё не начался и в нём есть required свободных мест
func (s *Service) IsBookable(ctx context.Context, date time.Time, timeSlotID int64, required int) (bool, error) {
	slot, err := s.getSlot(ctx, timeSlotID)
	if err != nil {
		return false, err
	}

	startsAt, err := slot.StartsAt(date, s.cfg.Location)
	if err != nil {
		return false, fmt.Errorf("%w: IsBookable - slot start: %w", ErrInternal, err)
	}

	available, err := s.AvailableCapacity(ctx, date, timeSlotID)
	if err != nil {
		return false, err
	}

	return domain.IsBookable(startsAt, s.timeProvider.Now(), available, required), nil
}

// CheckBookable проверяет все условия бронирования услуги в слот
// Внутри транзакции строка слота блокируется до коммита, поэтому пересчёт
// свободных мест и последующая вставка не разделены гонкой
func (s *Service) CheckBookable(ctx context.Context, date time.Time, timeSlotID int64, offering *domain.OfferingType) (*domain.SlotAvailability, error) {
	slot, err := s.getSlot(ctx, timeSlotID)
	if err != nil {
		return nil, err
	}

	if !slot.MatchesDate(date) {
		return nil, ErrSlotNotOnDate
	}

	if !offering.Schedule.Allows(slot.StartTime, s.cfg.MorningCutoff) {
		return nil, domain.ErrScheduleMismatch
	}

	startsAt, err := slot.StartsAt(date, s.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: CheckBookable - slot start: %w", ErrInternal, err)
	}

	if !startsAt.After(s.timeProvider.Now()) {
		return nil, domain.ErrSlotInPast
	}

	reserved, err := s.reservationRepo.SumActiveResourceCost(ctx, date, timeSlotID)
	if err != nil {
		return nil, fmt.Errorf("%w: CheckBookable - sum reserved: %w", ErrInternal, err)
	}

	avail := &domain.SlotAvailability{
		Slot:         *slot,
		Date:         domain.DateOnly(date),
		TotalBays:    s.cfg.TotalBays,
		ReservedBays: reserved,
		StartsAt:     startsAt,
	}

	if avail.AvailableBays() < offering.ResourceCost {
		s.logger.Warn("CheckBookable: slot=%d on %s is full, %d/%d bays taken, need %d",
			timeSlotID, date.Format(domain.DateFormat), reserved, s.cfg.TotalBays, offering.ResourceCost)
		return nil, domain.ErrCapacityExceeded
	}

	return avail, nil
}

// DayAvailability доступность всех слотов даты
func (s *Service) DayAvailability(ctx context.Context, date time.Time) ([]*domain.SlotAvailability, error) {
	slots, err := s.catalogRepo.ListTimeSlotsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: DayAvailability - list slots: %w", ErrInternal, err)
	}

	reserved, err := s.reservationRepo.ReservedBaysByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: DayAvailability - reserved bays: %w", ErrInternal, err)
	}

	result := make([]*domain.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		startsAt, err := slot.StartsAt(date, s.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: DayAvailability - slot start: %w", ErrInternal, err)
		}
		result = append(result, &domain.SlotAvailability{
			Slot:         *slot,
			Date:         domain.DateOnly(date),
			TotalBays:    s.cfg.TotalBays,
			ReservedBays: reserved[slot.ID],
			StartsAt:     startsAt,
		})
	}

	return result, nil
}

// Now текущее время по источнику сервиса
func (s *Service) Now() time.Time {
	return s.timeProvider.Now()
}

func (s *Service) getSlot(ctx context.Context, timeSlotID int64) (*domain.TimeSlot, error) {
	slot, err := s.catalogRepo.GetTimeSlot(ctx, timeSlotID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrTimeSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("getSlot: slot id=%d: %v", timeSlotID, err)
		return nil, fmt.Errorf("%w: get slot: %w", ErrInternal, err)
	}
	if !slot.Active {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}
