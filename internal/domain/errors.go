package domain

import "errors"

var (
	// ErrCapacityExceeded возвращается, если в слоте не хватает свободных мест
	ErrCapacityExceeded = errors.New("domain: not enough free bays in slot")

	// ErrEntitlementExhausted возвращается, если у абонемента нет занятий или он истёк
	ErrEntitlementExhausted = errors.New("domain: pass has no remaining classes or has expired")

	// ErrCancellationWindowExpired возвращается, если до начала осталось меньше допустимого
	ErrCancellationWindowExpired = errors.New("domain: cancellation window has expired")

	// ErrInvalidTransition возвращается при недопустимой смене состояния бронирования
	ErrInvalidTransition = errors.New("domain: invalid reservation state transition")

	// ErrScheduleMismatch возвращается, если услуга или абонемент не действует в этом слоте
	ErrScheduleMismatch = errors.New("domain: item is not valid for this time slot")

	// ErrSlotInPast возвращается, если слот уже начался
	ErrSlotInPast = errors.New("domain: slot has already started")

	// ErrInvalidMetadata возвращается при некорректных метаданных платёжной сессии
	ErrInvalidMetadata = errors.New("domain: invalid payment metadata")
)
