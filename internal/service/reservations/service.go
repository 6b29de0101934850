package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	"github.com/m04kA/SMC-StudioBooking/internal/service/entitlement"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
)

// Config политика бронирований
type Config struct {
	Location           *time.Location
	CancellationCutoff time.Duration
}

// Service машина состояний бронирований
// Проверка мест, списание абонемента, вставка и постановка задачи выдачи
// доступа выполняются одной сериализуемой транзакцией
type Service struct {
	reservationRepo ReservationRepository
	catalogRepo     CatalogRepository
	outboxRepo      OutboxRepository
	availability    AvailabilityService
	ledger          EntitlementLedger
	txManager       TransactionManager
	metrics         Metrics
	cfg             Config
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	catalogRepo CatalogRepository,
	outboxRepo OutboxRepository,
	availability AvailabilityService,
	ledger EntitlementLedger,
	txManager TransactionManager,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *Service {
	return NewServiceWithTime(reservationRepo, catalogRepo, outboxRepo, availability, ledger,
		txManager, metrics, cfg, &RealTimeProvider{}, logger)
}

// NewServiceWithTime как NewService, но с заданным источником времени
func NewServiceWithTime(
	reservationRepo ReservationRepository,
	catalogRepo CatalogRepository,
	outboxRepo OutboxRepository,
	availability AvailabilityService,
	ledger EntitlementLedger,
	txManager TransactionManager,
	metrics Metrics,
	cfg Config,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CancellationCutoff <= 0 {
		cfg.CancellationCutoff = domain.DefaultCancellationCutoffHours * time.Hour
	}
	return &Service{
		reservationRepo: reservationRepo,
		catalogRepo:     catalogRepo,
		outboxRepo:      outboxRepo,
		availability:    availability,
		ledger:          ledger,
		txManager:       txManager,
		metrics:         metrics,
		cfg:             cfg,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Create создает подтверждённое бронирование
// Вызов внутри внешней транзакции переиспользует её
func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*domain.Reservation, error) {
	if err := req.PaymentMethod.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.PaymentMethod == domain.PaymentPass && req.PassInstanceID == nil {
		return nil, fmt.Errorf("%w: pass instance id is required for pass payment", ErrInvalidInput)
	}
	if req.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}

	s.logger.Info("Create: customer=%s, date=%s, slot=%d, offering=%d, method=%s",
		req.CustomerID, req.Date.Format(domain.DateFormat), req.TimeSlotID, req.OfferingID, req.PaymentMethod)

	var created *domain.Reservation
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		offering, err := s.getOffering(ctx, req.OfferingID)
		if err != nil {
			return err
		}

		avail, err := s.availability.CheckBookable(ctx, req.Date, req.TimeSlotID, offering)
		if err != nil {
			return mapAvailabilityError(err)
		}

		if req.PaymentMethod == domain.PaymentPass {
			if _, err := s.ledger.Debit(ctx, *req.PassInstanceID, req.CustomerID, avail.Slot.StartTime); err != nil {
				return mapLedgerError(err)
			}
		}

		created, err = s.reservationRepo.Create(ctx, req.ToDomain(offering))
		if err != nil {
			return fmt.Errorf("%w: Create - insert reservation: %w", ErrInternal, err)
		}

		task, err := domain.NewOutboxTask(domain.TaskProvisionAccess,
			domain.ReservationTaskPayload{ReservationID: created.ID}, s.timeProvider.Now())
		if err != nil {
			return fmt.Errorf("%w: Create - build outbox task: %w", ErrInternal, err)
		}
		if err := s.outboxRepo.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("%w: Create - enqueue provisioning: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			s.metrics.CapacityRejected(string(req.PaymentMethod))
		}
		if errors.Is(err, ErrInternal) {
			s.logger.Error("Create: customer=%s, slot=%d: %v", req.CustomerID, req.TimeSlotID, err)
		} else {
			s.logger.Warn("Create: rejected for customer=%s, slot=%d: %v", req.CustomerID, req.TimeSlotID, err)
		}
		return nil, err
	}

	s.metrics.ReservationCreated(string(req.PaymentMethod))
	s.logger.Info("Create: reservation id=%d confirmed (%d bays, %s)", created.ID, created.ResourceCost, created.PaymentMethod)
	return created, nil
}

// Cancel отменяет бронирование владельцем и возвращает занятие на абонемент
// Возврат денег и отзыв кода доступа ставит вызывающий сценарий
func (s *Service) Cancel(ctx context.Context, reservationID int64, requesterID uuid.UUID) (*domain.Reservation, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by customer=%s", reservationID, requesterID)

	var cancelled *domain.Reservation
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		res, err := s.getReservation(ctx, reservationID)
		if err != nil {
			return err
		}

		if !res.IsOwnedBy(requesterID) {
			return ErrAccessDenied
		}

		startsAt, err := s.startsAt(ctx, res)
		if err != nil {
			return err
		}

		if err := res.CheckCancellable(startsAt, s.timeProvider.Now(), s.cfg.CancellationCutoff); err != nil {
			return err
		}

		if err := s.reservationRepo.UpdateState(ctx, res.ID, domain.ReservationCancelled); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: Cancel - update state: %w", ErrInternal, err)
		}

		if res.PaymentMethod == domain.PaymentPass && res.PassInstanceID != nil {
			if _, err := s.ledger.Credit(ctx, *res.PassInstanceID); err != nil {
				return mapLedgerError(err)
			}
		}

		now := s.timeProvider.Now()
		res.State = domain.ReservationCancelled
		res.CancelledAt = &now
		cancelled = res
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("Cancel: reservation id=%d: %v", reservationID, err)
		} else {
			s.logger.Warn("Cancel: reservation id=%d rejected: %v", reservationID, err)
		}
		return nil, err
	}

	s.logger.Info("Cancel: reservation id=%d cancelled (%s)", cancelled.ID, cancelled.PaymentMethod)
	return cancelled, nil
}

// Get получает бронирование по ID
// Клиент может видеть только своё бронирование
func (s *Service) Get(ctx context.Context, reservationID int64, requesterID uuid.UUID) (*domain.Reservation, error) {
	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.IsOwnedBy(requesterID) {
		s.logger.Warn("Get: access denied for customer=%s to reservation id=%d", requesterID, reservationID)
		return nil, ErrAccessDenied
	}
	return res, nil
}

// ListForCustomer история бронирований клиента
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Reservation, error) {
	list, err := s.reservationRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("ListForCustomer: customer=%s: %v", customerID, err)
		return nil, fmt.Errorf("%w: ListForCustomer - repository error: %w", ErrInternal, err)
	}
	return list, nil
}

// StartsAt момент начала бронирования в часовом поясе студии
func (s *Service) StartsAt(ctx context.Context, res *domain.Reservation) (time.Time, error) {
	return s.startsAt(ctx, res)
}

// Вспомогательные методы

func (s *Service) startsAt(ctx context.Context, res *domain.Reservation) (time.Time, error) {
	slot, err := s.catalogRepo.GetTimeSlot(ctx, res.TimeSlotID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrTimeSlotNotFound) {
			return time.Time{}, ErrSlotNotFound
		}
		return time.Time{}, fmt.Errorf("%w: get slot: %w", ErrInternal, err)
	}
	startsAt, err := slot.StartsAt(res.Date, s.cfg.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: slot start: %w", ErrInternal, err)
	}
	return startsAt, nil
}

func (s *Service) getReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("getReservation: reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: get reservation: %w", ErrInternal, err)
	}
	return res, nil
}

func (s *Service) getOffering(ctx context.Context, id int64) (*domain.OfferingType, error) {
	offering, err := s.catalogRepo.GetOffering(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOfferingNotFound) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("%w: get offering: %w", ErrInternal, err)
	}
	if !offering.Active {
		return nil, ErrOfferingNotFound
	}
	return offering, nil
}

// mapAvailabilityError переводит ошибки движка доступности в ошибки сервиса,
// доменные ошибки проходят как есть
func mapAvailabilityError(err error) error {
	switch {
	case errors.Is(err, availability.ErrSlotNotFound), errors.Is(err, availability.ErrSlotNotOnDate):
		return ErrSlotNotFound
	case errors.Is(err, availability.ErrInternal):
		return fmt.Errorf("%w: %w", ErrInternal, err)
	default:
		return err
	}
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, entitlement.ErrPassNotFound):
		return ErrPassNotFound
	case errors.Is(err, entitlement.ErrAccessDenied):
		return ErrAccessDenied
	case errors.Is(err, entitlement.ErrInternal), errors.Is(err, entitlement.ErrPassTypeNotFound):
		return fmt.Errorf("%w: %w", ErrInternal, err)
	default:
		return err
	}
}
