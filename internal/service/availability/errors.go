package availability

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден или неактивен
	ErrSlotNotFound = errors.New("availability: time slot not found")

	// ErrSlotNotOnDate возвращается, когда слот не повторяется в день недели даты
	ErrSlotNotOnDate = errors.New("availability: time slot does not occur on this date")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
