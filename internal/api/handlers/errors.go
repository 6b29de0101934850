package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const (
	msgCapacityExceeded    = "в выбранном слоте недостаточно свободных мест"
	msgPassExhausted       = "у абонемента не осталось занятий или он истёк"
	msgCancellationExpired = "отменить бронирование уже нельзя"
	msgInvalidTransition   = "бронирование уже отменено"
	msgScheduleMismatch    = "услуга или абонемент не действует в выбранное время"
	msgSlotInPast          = "выбранный слот уже начался"
)

// RespondDomainError отвечает на ошибки доменных правил
// Возвращает false, если err не является доменной ошибкой
func RespondDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		RespondConflict(w, CodeCapacityExceeded, msgCapacityExceeded)
	case errors.Is(err, domain.ErrEntitlementExhausted):
		RespondConflict(w, CodePassExhausted, msgPassExhausted)
	case errors.Is(err, domain.ErrCancellationWindowExpired):
		RespondErrorCode(w, http.StatusBadRequest, CodeCancellationExpired, msgCancellationExpired)
	case errors.Is(err, domain.ErrInvalidTransition):
		RespondConflict(w, CodeConflict, msgInvalidTransition)
	case errors.Is(err, domain.ErrScheduleMismatch):
		RespondBadRequest(w, msgScheduleMismatch)
	case errors.Is(err, domain.ErrSlotInPast):
		RespondBadRequest(w, msgSlotInPast)
	default:
		return false
	}
	return true
}
