package entitlement

import "errors"

var (
	// ErrPassNotFound возвращается, когда абонемент не найден
	ErrPassNotFound = errors.New("entitlement: pass not found")

	// ErrPassTypeNotFound возвращается, когда тип абонемента не найден или неактивен
	ErrPassTypeNotFound = errors.New("entitlement: pass type not found")

	// ErrAccessDenied возвращается, когда абонемент принадлежит другому клиенту
	ErrAccessDenied = errors.New("entitlement: pass belongs to another customer")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("entitlement: internal error")
)
