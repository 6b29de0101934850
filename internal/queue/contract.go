// Package queue доставляет письма через RabbitMQ.
// Publisher кладёт сообщение в durable очередь, Consumer отдаёт его почтовому провайдеру.
package queue

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Handler получатель сообщений из очереди
type Handler interface {
	Send(ctx context.Context, msg *domain.EmailMessage) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
