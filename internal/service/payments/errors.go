package payments

import "errors"

var (
	// ErrInvalidInput возвращается, если у платежа нет payment intent
	ErrInvalidInput = errors.New("payments: refund without payment intent")

	// ErrUpstream возвращается при ошибке платёжного провайдера
	ErrUpstream = errors.New("payments: provider unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("payments: internal error")
)
