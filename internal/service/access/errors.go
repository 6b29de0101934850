package access

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("access: reservation not found")

	// ErrUpstream возвращается при ошибке API замка; бронирование остаётся без кода
	ErrUpstream = errors.New("access: lock vendor unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("access: internal error")
)
