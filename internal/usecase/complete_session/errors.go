package complete_session

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("complete_session: invalid input data")

	// ErrSessionNotFound возвращается, когда сессия не найдена
	ErrSessionNotFound = errors.New("complete_session: session not found")

	// ErrAccessDenied возвращается, когда сессию завершает посторонний пользователь
	ErrAccessDenied = errors.New("complete_session: access denied")

	// ErrInvalidState возвращается, когда сессия не идёт в данный момент
	ErrInvalidState = errors.New("complete_session: session is not in progress")

	// ErrInsufficientMinutes возвращается, когда у клиента меньше минут, чем
	// длилась сессия. Fail-closed: вся транзакция откатывается, сессия
	// остаётся in_progress, счётчики и журнал не меняются.
	ErrInsufficientMinutes = errors.New("complete_session: insufficient minutes")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("complete_session: internal error")
)
