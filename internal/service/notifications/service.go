package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	passRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/pass"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
)

// Config параметры писем
type Config struct {
	Location     *time.Location
	AccessBefore time.Duration
	AccessAfter  time.Duration
}

// Service сборка и отправка писем клиентам
type Service struct {
	reservationRepo ReservationRepository
	passRepo        PassRepository
	catalogRepo     CatalogRepository
	sender          Sender
	cfg             Config
	logger          Logger
}

// NewService создает новый экземпляр сервиса уведомлений
func NewService(
	reservationRepo ReservationRepository,
	passRepo PassRepository,
	catalogRepo CatalogRepository,
	sender Sender,
	cfg Config,
	logger Logger,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		reservationRepo: reservationRepo,
		passRepo:        passRepo,
		catalogRepo:     catalogRepo,
		sender:          sender,
		cfg:             cfg,
		logger:          logger,
	}
}

// NotifyReservation письмо о подтверждении или отмене бронирования
// Код доступа включается, только если он уже выдан
func (s *Service) NotifyReservation(ctx context.Context, reservationID int64, reason string) error {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return fmt.Errorf("%w: reservation id=%d", ErrNotFound, reservationID)
		}
		return fmt.Errorf("%w: NotifyReservation - get reservation: %w", ErrInternal, err)
	}

	if res.CustomerEmail == "" {
		s.logger.Warn("NotifyReservation: reservation id=%d has no contact email, skipping", reservationID)
		return nil
	}

	msg, err := s.BuildReservationMessage(ctx, res, reason)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// NotifyPass письмо о покупке абонемента
func (s *Service) NotifyPass(ctx context.Context, passInstanceID int64, amountCents int64) error {
	pass, err := s.passRepo.GetByID(ctx, passInstanceID)
	if err != nil {
		if errors.Is(err, passRepo.ErrPassNotFound) {
			return fmt.Errorf("%w: pass id=%d", ErrNotFound, passInstanceID)
		}
		return fmt.Errorf("%w: NotifyPass - get pass: %w", ErrInternal, err)
	}

	if pass.CustomerEmail == "" {
		s.logger.Warn("NotifyPass: pass id=%d has no contact email, skipping", passInstanceID)
		return nil
	}

	passType, err := s.catalogRepo.GetPassType(ctx, pass.PassTypeID)
	if err != nil {
		return fmt.Errorf("%w: NotifyPass - get pass type: %w", ErrInternal, err)
	}

	text, html, err := render(passTextTmpl, passHTMLTmpl, passView{
		Name:         passType.Name,
		ClassCount:   pass.ClassesTotal,
		ValidityDays: passType.ValidityDays,
		Price:        formatPrice(amountCents),
	})
	if err != nil {
		return fmt.Errorf("%w: NotifyPass - render: %w", ErrInternal, err)
	}

	return s.send(ctx, &domain.EmailMessage{
		To:      pass.CustomerEmail,
		Subject: "Tu bono " + passType.Name,
		Text:    text,
		HTML:    html,
		Key:     fmt.Sprintf("pass:%d:purchased", pass.ID),
	})
}

// BuildReservationMessage собирает письмо по бронированию
func (s *Service) BuildReservationMessage(ctx context.Context, res *domain.Reservation, reason string) (*domain.EmailMessage, error) {
	offering, err := s.catalogRepo.GetOffering(ctx, res.OfferingTypeID)
	if err != nil {
		return nil, fmt.Errorf("%w: get offering: %w", ErrInternal, err)
	}
	slot, err := s.catalogRepo.GetTimeSlot(ctx, res.TimeSlotID)
	if err != nil {
		return nil, fmt.Errorf("%w: get slot: %w", ErrInternal, err)
	}

	cancelled := reason == domain.NotifyCancelled
	view := reservationView{
		Date:       res.Date.Format("02/01/2006"),
		StartTime:  slot.StartTime.String(),
		EndTime:    slot.EndTime.String(),
		Offering:   offering.Name,
		Price:      formatPrice(res.PricePaidCents),
		PaidByPass: res.PaymentMethod == domain.PaymentPass,
		Cancelled:  cancelled,
	}

	if res.AccessCode != nil && !cancelled {
		startsAt, err := slot.StartsAt(res.Date, s.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: slot start: %w", ErrInternal, err)
		}
		endsAt, err := slot.EndsAt(res.Date, s.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: slot end: %w", ErrInternal, err)
		}
		from, until := domain.AccessWindow(startsAt, endsAt, s.cfg.AccessBefore, s.cfg.AccessAfter)
		view.Code = *res.AccessCode
		view.ValidFrom = from.In(s.cfg.Location).Format("15:04")
		view.ValidUntil = until.In(s.cfg.Location).Format("15:04")
	}

	text, html, err := render(reservationTextTmpl, reservationHTMLTmpl, view)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %w", ErrInternal, err)
	}

	subject := "Reserva confirmada " + view.Date
	if cancelled {
		subject = "Reserva cancelada " + view.Date
	} else {
		reason = domain.NotifyConfirmed
	}

	return &domain.EmailMessage{
		To:      res.CustomerEmail,
		Subject: subject,
		Text:    text,
		HTML:    html,
		Key:     fmt.Sprintf("reservation:%d:%s", res.ID, reason),
	}, nil
}

func (s *Service) send(ctx context.Context, msg *domain.EmailMessage) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("send: message %s: %v", msg.Key, err)
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	s.logger.Info("send: message %s queued for %s", msg.Key, msg.To)
	return nil
}

// formatPrice форматирует центы как "12,50 €"
func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d €", sign, cents/100, cents%100)
}
