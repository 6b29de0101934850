package coupons

import "errors"

var (
	// ErrInvalidInput возвращается при пустом или слишком длинном коде
	ErrInvalidInput = errors.New("coupons: invalid coupon code")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("coupons: internal error")
)
