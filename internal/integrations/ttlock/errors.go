package ttlock

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("ttlock client: internal error")

	// ErrAuth возвращается, если не удалось получить токен доступа
	ErrAuth = errors.New("ttlock client: authorization failed")

	// ErrUpstream возвращается при недоступности API замка
	ErrUpstream = errors.New("ttlock client: upstream unavailable")

	// ErrVendor возвращается, когда API вернул ненулевой errcode
	ErrVendor = errors.New("ttlock client: vendor error")

	// ErrInvalidResponse возвращается при некорректном ответе
	ErrInvalidResponse = errors.New("ttlock client: invalid response")
)
