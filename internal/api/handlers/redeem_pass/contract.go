package redeem_pass

import (
	"context"

	redeemPass "github.com/m04kA/SMC-StudioBooking/internal/usecase/redeem_pass"
)

type RedeemPassUseCase interface {
	Execute(ctx context.Context, req *redeemPass.Request) (*redeemPass.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
