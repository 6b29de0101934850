package stripe

import "errors"

var (
	// ErrInvalidRequest возвращается, когда Stripe отклонил запрос (4xx)
	ErrInvalidRequest = errors.New("stripe client: request rejected")

	// ErrUpstream возвращается при недоступности Stripe или ответе 5xx
	ErrUpstream = errors.New("stripe client: upstream unavailable")

	// ErrInvalidResponse возвращается при некорректном ответе
	ErrInvalidResponse = errors.New("stripe client: invalid response")

	// ErrInvalidSignature возвращается, если подпись webhook не прошла проверку
	ErrInvalidSignature = errors.New("stripe webhook: invalid signature")

	// ErrInvalidPayload возвращается, если тело webhook не удалось разобрать
	ErrInvalidPayload = errors.New("stripe webhook: invalid payload")

	// ErrUnhandledEvent возвращается для событий, которые не завершают оплату
	ErrUnhandledEvent = errors.New("stripe webhook: unhandled event")
)
