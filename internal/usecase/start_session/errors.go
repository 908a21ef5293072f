package start_session

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("start_session: invalid input data")

	// ErrSessionNotFound возвращается, когда сессия не найдена
	ErrSessionNotFound = errors.New("start_session: session not found")

	// ErrAccessDenied возвращается, когда сессию пытается начать не её клиент
	ErrAccessDenied = errors.New("start_session: access denied")

	// ErrInvalidState возвращается, когда сессия или заявка не в подходящем статусе
	ErrInvalidState = errors.New("start_session: session cannot be started")

	// ErrWindowExpired возвращается, когда окно подключения к принятой
	// заявке истекло: серверная переоценка countdown, клиентскому
	// "оставшемуся времени" здесь не доверяют
	ErrWindowExpired = errors.New("start_session: accepted window has expired")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("start_session: internal error")
)
