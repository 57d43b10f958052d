package snapshot

import "errors"

var (
	// ErrBuildQuery возвращается при ошибке построения SQL-запроса
	ErrBuildQuery = errors.New("snapshot storage: build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL-запроса
	ErrExecQuery = errors.New("snapshot storage: execute query")

	// ErrScanRow возвращается при ошибке чтения строки результата
	ErrScanRow = errors.New("snapshot storage: scan row")

	// ErrTx возвращается при ошибке управления транзакцией
	ErrTx = errors.New("snapshot storage: transaction")
)
