package get_available_slots

import "errors"

var (
	// ErrOfferingNotFound возвращается, когда услуга не найдена или неактивна
	ErrOfferingNotFound = errors.New("get_available_slots: offering not found")

	// ErrInvalidDate возвращается, если дата уже прошла
	ErrInvalidDate = errors.New("get_available_slots: date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
