package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
)

// UseCase use case для получения доступности слотов на дату
type UseCase struct {
	availability AvailabilityService
	catalogRepo  CatalogRepository
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(availability AvailabilityService, catalogRepo CatalogRepository, logger Logger) *UseCase {
	return &UseCase{
		availability: availability,
		catalogRepo:  catalogRepo,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступности слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s", req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Прошедшие даты не показываем
	now := uc.availability.Now()
	date := domain.DateOnly(req.Date)
	if isDateInPast(date, now, uc.availability.Location()) {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	// 3. Услуга, для которой считается Bookable
	var offering *domain.OfferingType
	if req.OfferingID != nil {
		o, err := uc.catalogRepo.GetOffering(ctx, *req.OfferingID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrOfferingNotFound) {
				uc.logger.Warn("GetAvailableSlots: offering id=%d not found", *req.OfferingID)
				return nil, ErrOfferingNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get offering id=%d: %v", *req.OfferingID, err)
			return nil, fmt.Errorf("%w: failed to get offering: %w", ErrInternal, err)
		}
		if !o.Active {
			return nil, ErrOfferingNotFound
		}
		offering = o
	}

	// 4. Занятость слотов
	day, err := uc.availability.DayAvailability(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get availability for %s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to get availability: %w", ErrInternal, err)
	}

	slots := buildSlots(day, offering, uc.availability.MorningCutoff(), now)

	totalBays := domain.DefaultTotalBays
	if len(day) > 0 {
		totalBays = day[0].TotalBays
	}

	uc.logger.Info("GetAvailableSlots: found %d slots for %s", len(slots), date.Format(domain.DateFormat))

	return &Response{
		Date:      date,
		TotalBays: totalBays,
		Slots:     slots,
	}, nil
}
