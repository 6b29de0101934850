package notifications

import "errors"

var (
	// ErrNotFound возвращается, если бронирование или абонемент исчезли до отправки
	ErrNotFound = errors.New("notifications: subject not found")

	// ErrSend возвращается, если письмо не удалось передать отправителю
	ErrSend = errors.New("notifications: send failed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("notifications: internal error")
)
