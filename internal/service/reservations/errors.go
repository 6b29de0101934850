package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservations: reservation not found")

	// ErrOfferingNotFound возвращается, когда услуга не найдена или неактивна
	ErrOfferingNotFound = errors.New("reservations: offering not found")

	// ErrSlotNotFound возвращается, когда слот не найден или не проводится в эту дату
	ErrSlotNotFound = errors.New("reservations: time slot not found")

	// ErrPassNotFound возвращается, когда абонемент не найден
	ErrPassNotFound = errors.New("reservations: pass not found")

	// ErrAccessDenied возвращается, когда бронирование или абонемент принадлежит другому клиенту
	ErrAccessDenied = errors.New("reservations: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reservations: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
