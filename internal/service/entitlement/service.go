package entitlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	passRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/pass"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Service журнал абонементов: выпуск, списание и возврат занятий
// Debit и Credit должны вызываться внутри транзакции изменения бронирования
type Service struct {
	passRepo      PassRepository
	catalogRepo   CatalogRepository
	morningCutoff types.TimeString
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр журнала абонементов
func NewService(
	passRepo PassRepository,
	catalogRepo CatalogRepository,
	morningCutoff types.TimeString,
	logger Logger,
) *Service {
	return NewServiceWithTime(passRepo, catalogRepo, morningCutoff, &RealTimeProvider{}, logger)
}

// NewServiceWithTime как NewService, но с заданным источником времени
func NewServiceWithTime(
	passRepo PassRepository,
	catalogRepo CatalogRepository,
	morningCutoff types.TimeString,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		passRepo:      passRepo,
		catalogRepo:   catalogRepo,
		morningCutoff: morningCutoff,
		timeProvider:  timeProvider,
		logger:        logger,
	}
}

// Instantiate выпускает абонемент после успешной оплаты
// Дата активации и срок пусты до первого списания
func (s *Service) Instantiate(ctx context.Context, customerID uuid.UUID, customerEmail string, passTypeID int64) (*domain.PassInstance, error) {
	passType, err := s.getPassType(ctx, passTypeID)
	if err != nil {
		return nil, err
	}

	created, err := s.passRepo.Create(ctx, domain.NewPassInstance(customerID, customerEmail, passType))
	if err != nil {
		s.logger.Error("Instantiate: customer=%s, passType=%d: %v", customerID, passTypeID, err)
		return nil, fmt.Errorf("%w: Instantiate - create pass: %w", ErrInternal, err)
	}

	s.logger.Info("Instantiate: issued pass id=%d (%d classes, %d days) to customer=%s",
		created.ID, created.ClassesTotal, passType.ValidityDays, customerID)
	return created, nil
}

// Debit списывает одно занятие с абонемента клиента для слота, начинающегося в slotStart
func (s *Service) Debit(ctx context.Context, passInstanceID int64, customerID uuid.UUID, slotStart types.TimeString) (*domain.PassInstance, error) {
	pass, err := s.getPass(ctx, passInstanceID)
	if err != nil {
		return nil, err
	}

	if pass.CustomerID != customerID {
		s.logger.Warn("Debit: customer=%s is not the owner of pass id=%d", customerID, passInstanceID)
		return nil, ErrAccessDenied
	}

	passType, err := s.getPassType(ctx, pass.PassTypeID)
	if err != nil {
		return nil, err
	}

	if !passType.Schedule.Allows(slotStart, s.morningCutoff) {
		s.logger.Warn("Debit: pass id=%d (%s) is not valid for slot starting at %s", pass.ID, passType.Schedule, slotStart)
		return nil, domain.ErrScheduleMismatch
	}

	if err := pass.Debit(s.timeProvider.Now(), passType.Validity()); err != nil {
		s.logger.Warn("Debit: pass id=%d exhausted or expired (remaining=%d)", pass.ID, pass.ClassesRemaining)
		return nil, err
	}

	if err := s.passRepo.Update(ctx, pass); err != nil {
		s.logger.Error("Debit: update pass id=%d: %v", pass.ID, err)
		return nil, fmt.Errorf("%w: Debit - update pass: %w", ErrInternal, err)
	}

	s.logger.Info("Debit: pass id=%d debited, remaining=%d, state=%s", pass.ID, pass.ClassesRemaining, pass.State)
	return pass, nil
}

// Credit возвращает одно занятие после отмены бронирования
func (s *Service) Credit(ctx context.Context, passInstanceID int64) (*domain.PassInstance, error) {
	pass, err := s.getPass(ctx, passInstanceID)
	if err != nil {
		return nil, err
	}

	pass.Credit()

	if err := s.passRepo.Update(ctx, pass); err != nil {
		s.logger.Error("Credit: update pass id=%d: %v", pass.ID, err)
		return nil, fmt.Errorf("%w: Credit - update pass: %w", ErrInternal, err)
	}

	s.logger.Info("Credit: pass id=%d credited, remaining=%d, state=%s", pass.ID, pass.ClassesRemaining, pass.State)
	return pass, nil
}

// EligiblePass выбирает абонемент клиента, который истекает раньше остальных
// и действует в слоте slotStart
// Возвращает domain.ErrEntitlementExhausted, если подходящего абонемента нет
func (s *Service) EligiblePass(ctx context.Context, customerID uuid.UUID, slotStart types.TimeString) (*domain.PassInstance, error) {
	candidates, err := s.passRepo.ListRedeemable(ctx, customerID, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("EligiblePass: customer=%s: %v", customerID, err)
		return nil, fmt.Errorf("%w: EligiblePass - list passes: %w", ErrInternal, err)
	}

	for _, pass := range candidates {
		passType, err := s.getPassType(ctx, pass.PassTypeID)
		if err != nil {
			return nil, err
		}
		if passType.Schedule.Allows(slotStart, s.morningCutoff) {
			return pass, nil
		}
	}

	s.logger.Warn("EligiblePass: customer=%s has no redeemable pass for slot at %s", customerID, slotStart)
	return nil, domain.ErrEntitlementExhausted
}

// ListForCustomer возвращает абонементы клиента с фактическим состоянием на текущий момент
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.PassInstance, error) {
	passes, err := s.passRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("ListForCustomer: customer=%s: %v", customerID, err)
		return nil, fmt.Errorf("%w: ListForCustomer - list passes: %w", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	for _, p := range passes {
		p.State = p.StateAt(now)
	}
	return passes, nil
}

func (s *Service) getPass(ctx context.Context, id int64) (*domain.PassInstance, error) {
	pass, err := s.passRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, passRepo.ErrPassNotFound) {
			return nil, ErrPassNotFound
		}
		s.logger.Error("getPass: pass id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: get pass: %w", ErrInternal, err)
	}
	return pass, nil
}

func (s *Service) getPassType(ctx context.Context, id int64) (*domain.PassType, error) {
	passType, err := s.catalogRepo.GetPassType(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrPassTypeNotFound) {
			return nil, ErrPassTypeNotFound
		}
		s.logger.Error("getPassType: pass type id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: get pass type: %w", ErrInternal, err)
	}
	return passType, nil
}
