package access

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

const providerTTLock = "ttlock"

// Config окно действия кода и часовой пояс студии
type Config struct {
	Location *time.Location
	Before   time.Duration
	After    time.Duration
}

// Service выдача и отзыв временных кодов двери
// Работает вне транзакции бронирования: ошибка замка не откатывает бронь
type Service struct {
	reservationRepo ReservationRepository
	catalogRepo     CatalogRepository
	outboxRepo      OutboxRepository
	lock            LockClient
	txManager       TransactionManager
	metrics         Metrics
	cfg             Config
	generateCode    func() (string, error)
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса доступа
func NewService(
	reservationRepo ReservationRepository,
	catalogRepo CatalogRepository,
	outboxRepo OutboxRepository,
	lock LockClient,
	txManager TransactionManager,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		reservationRepo: reservationRepo,
		catalogRepo:     catalogRepo,
		outboxRepo:      outboxRepo,
		lock:            lock,
		txManager:       txManager,
		metrics:         metrics,
		cfg:             cfg,
		generateCode:    RandomPasscode,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Provision выдаёт код для подтверждённого бронирования и ставит письмо с кодом
// Повторный вызов возвращает уже выданный код
// Для неподтверждённого бронирования возвращает nil, nil
func (s *Service) Provision(ctx context.Context, reservationID int64) (*domain.AccessGrant, error) {
	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if res.State != domain.ReservationConfirmed {
		s.logger.Info("Provision: reservation id=%d is %s, nothing to provision", res.ID, res.State)
		return nil, nil
	}

	from, until, err := s.window(ctx, res)
	if err != nil {
		return nil, err
	}

	if res.HasAccessCode() {
		return &domain.AccessGrant{
			Code:       ptr.Value(res.AccessCode),
			ExternalID: *res.AccessCodeExternalID,
			ValidFrom:  from,
			ValidUntil: until,
		}, nil
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, fmt.Errorf("%w: Provision - generate code: %w", ErrInternal, err)
	}

	passcode, err := s.lock.AddPasscode(ctx, code, fmt.Sprintf("reserva-%d", res.ID), from, until)
	if err != nil {
		s.metrics.UpstreamError(providerTTLock)
		s.logger.Error("Provision: reservation id=%d stays without access code: %v", res.ID, err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	stillConfirmed := true
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.getReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		if current.State != domain.ReservationConfirmed {
			stillConfirmed = false
			return nil
		}

		if err := s.reservationRepo.SetAccessCode(ctx, res.ID, passcode.Code, passcode.ExternalID); err != nil {
			return fmt.Errorf("%w: Provision - save code: %w", ErrInternal, err)
		}

		task, err := domain.NewOutboxTask(domain.TaskNotifyReservation,
			domain.ReservationTaskPayload{ReservationID: res.ID, Reason: domain.NotifyConfirmed}, s.timeProvider.Now())
		if err != nil {
			return fmt.Errorf("%w: Provision - build task: %w", ErrInternal, err)
		}
		return s.outboxRepo.Enqueue(ctx, task)
	})
	if err != nil {
		s.logger.Error("Provision: reservation id=%d, passcode id=%s not saved: %v", res.ID, passcode.ExternalID, err)
		s.dropPasscode(ctx, res.ID, passcode.ExternalID)
		return nil, err
	}

	if !stillConfirmed {
		s.logger.Warn("Provision: reservation id=%d was cancelled while provisioning", res.ID)
		s.dropPasscode(ctx, res.ID, passcode.ExternalID)
		return nil, nil
	}

	s.logger.Info("Provision: reservation id=%d got passcode id=%s", res.ID, passcode.ExternalID)
	return &domain.AccessGrant{
		Code:       passcode.Code,
		ExternalID: passcode.ExternalID,
		ValidFrom:  from,
		ValidUntil: until,
	}, nil
}

// Revoke удаляет код с замка и из бронирования
func (s *Service) Revoke(ctx context.Context, reservationID int64) error {
	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return err
	}

	if !res.HasAccessCode() {
		return nil
	}

	if err := s.lock.DeletePasscode(ctx, *res.AccessCodeExternalID); err != nil {
		s.metrics.UpstreamError(providerTTLock)
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if err := s.reservationRepo.ClearAccessCode(ctx, res.ID); err != nil {
		return fmt.Errorf("%w: Revoke - clear code: %w", ErrInternal, err)
	}

	s.logger.Info("Revoke: passcode id=%s of reservation id=%d deleted", *res.AccessCodeExternalID, res.ID)
	return nil
}

// Window окно действия кода для бронирования
func (s *Service) Window(ctx context.Context, res *domain.Reservation) (time.Time, time.Time, error) {
	return s.window(ctx, res)
}

func (s *Service) window(ctx context.Context, res *domain.Reservation) (time.Time, time.Time, error) {
	slot, err := s.catalogRepo.GetTimeSlot(ctx, res.TimeSlotID)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: get slot: %w", ErrInternal, err)
	}
	startsAt, err := slot.StartsAt(res.Date, s.cfg.Location)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	endsAt, err := slot.EndsAt(res.Date, s.cfg.Location)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	from, until := domain.AccessWindow(startsAt, endsAt, s.cfg.Before, s.cfg.After)
	return from, until, nil
}

func (s *Service) dropPasscode(ctx context.Context, reservationID int64, externalID string) {
	if err := s.lock.DeletePasscode(ctx, externalID); err != nil {
		s.metrics.UpstreamError(providerTTLock)
		s.logger.Error("Provision: orphan passcode id=%s of reservation id=%d not deleted: %v", externalID, reservationID, err)
	}
}

func (s *Service) getReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("%w: get reservation: %w", ErrInternal, err)
	}
	return res, nil
}

// RandomPasscode случайный код из domain.PasscodeDigits цифр без ведущего нуля
func RandomPasscode() (string, error) {
	low := big.NewInt(1)
	for i := 1; i < domain.PasscodeDigits; i++ {
		low.Mul(low, big.NewInt(10))
	}
	span := new(big.Int).Mul(low, big.NewInt(9))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, low).String(), nil
}
