package pass

import "errors"

var (
	// ErrPassNotFound возвращается, когда абонемент не найден
	ErrPassNotFound = errors.New("pass.repository: pass instance not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("pass.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("pass.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("pass.repository: failed to scan row")
)
