package request_payout

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("request_payout: invalid input data")

	// ErrInsufficientBalance возвращается, когда запрошенная сумма превышает
	// баланс. Транзакция откатывается: ни списания, ни записей в журнале.
	ErrInsufficientBalance = errors.New("request_payout: insufficient balance")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("request_payout: internal error")
)
