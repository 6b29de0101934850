package queue

import "errors"

var (
	// ErrPublish возвращается, если сообщение не принято брокером
	ErrPublish = errors.New("queue: publish failed")

	// ErrDecode возвращается для сообщений, которые не удалось разобрать
	ErrDecode = errors.New("queue: malformed message")
)
