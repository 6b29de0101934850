package mailer

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("mailer client: internal error")

	// ErrRejected возвращается, когда провайдер отклонил письмо (4xx)
	ErrRejected = errors.New("mailer client: message rejected")

	// ErrUpstream возвращается при недоступности провайдера
	ErrUpstream = errors.New("mailer client: upstream unavailable")
)
