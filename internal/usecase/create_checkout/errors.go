package create_checkout

import (
	"errors"

	couponModels "github.com/m04kA/SMC-StudioBooking/internal/service/coupons/models"
)

var (
	// ErrOfferingNotFound возвращается, когда услуга не найдена или неактивна
	ErrOfferingNotFound = errors.New("create_checkout: offering not found")

	// ErrPassTypeNotFound возвращается, когда абонемент не найден или неактивен
	ErrPassTypeNotFound = errors.New("create_checkout: pass type not found")

	// ErrSlotNotFound возвращается, когда слот не найден или не проводится в эту дату
	ErrSlotNotFound = errors.New("create_checkout: time slot not found")

	// ErrCouponRejected возвращается, когда купон не применим к покупке
	ErrCouponRejected = errors.New("create_checkout: coupon rejected")

	// ErrUpstream возвращается, если платёжный провайдер недоступен
	ErrUpstream = errors.New("create_checkout: payment provider unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_checkout: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_checkout: internal error")
)

// CouponError отказ купона с кодом причины для клиента
type CouponError struct {
	Reason couponModels.Reason
}

func (e *CouponError) Error() string {
	return ErrCouponRejected.Error() + ": " + string(e.Reason)
}

// Is позволяет проверять отказ через errors.Is(err, ErrCouponRejected)
func (e *CouponError) Is(target error) bool {
	return target == ErrCouponRejected
}
