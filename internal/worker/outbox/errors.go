package outbox

import "errors"

var (
	// ErrNotConfigured возвращается, если воркеру не переданы зависимости
	ErrNotConfigured = errors.New("outbox: worker missing dependencies")

	// ErrUnknownKind возвращается для задачи неизвестного вида
	ErrUnknownKind = errors.New("outbox: unknown task kind")

	// ErrBadPayload возвращается, если payload задачи не читается
	ErrBadPayload = errors.New("outbox: malformed task payload")
)
