package respond_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("respond_booking: invalid input data")

	// ErrBookingNotFound возвращается, когда заявка не найдена
	ErrBookingNotFound = errors.New("respond_booking: booking not found")

	// ErrAccessDenied возвращается, когда заявка адресована другому провайдеру
	ErrAccessDenied = errors.New("respond_booking: access denied")

	// ErrInvalidState возвращается при повторном ответе на уже разрешённую
	// заявку: второй ответ отклоняется, а не применяется заново
	ErrInvalidState = errors.New("respond_booking: booking is not pending")

	// ErrBookingExpired возвращается, когда окно ответа на instant-заявку
	// истекло к моменту ответа
	ErrBookingExpired = errors.New("respond_booking: booking has expired")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("respond_booking: internal error")
)
