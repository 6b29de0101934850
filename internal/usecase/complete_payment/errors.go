package complete_payment

import "errors"

var (
	// ErrInvalidSignature возвращается, если подпись события не прошла проверку
	ErrInvalidSignature = errors.New("complete_payment: invalid signature")

	// ErrInvalidPayload возвращается, если тело события не разбирается
	ErrInvalidPayload = errors.New("complete_payment: invalid payload")

	// ErrInternal возвращается при внутренних ошибках usecase, провайдер повторит доставку
	ErrInternal = errors.New("complete_payment: internal error")
)
