package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда заявка на бронирование не найдена
	ErrBookingNotFound = errors.New("booking.repository: booking request not found")

	// ErrStatusConflict возвращается, когда CAS-переход статуса не прошёл:
	// заявка уже не находится в ожидаемом статусе
	ErrStatusConflict = errors.New("booking.repository: booking status conflict")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
