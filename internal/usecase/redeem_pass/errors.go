package redeem_pass

import "errors"

var (
	// ErrOfferingNotFound возвращается, когда услуга не найдена или неактивна
	ErrOfferingNotFound = errors.New("redeem_pass: offering not found")

	// ErrSlotNotFound возвращается, когда слот не найден или не проводится в эту дату
	ErrSlotNotFound = errors.New("redeem_pass: time slot not found")

	// ErrPassNotFound возвращается, когда абонемент не найден
	ErrPassNotFound = errors.New("redeem_pass: pass not found")

	// ErrAccessDenied возвращается, когда абонемент принадлежит другому клиенту
	ErrAccessDenied = errors.New("redeem_pass: pass belongs to another customer")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("redeem_pass: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("redeem_pass: internal error")
)
