package wallets

import "errors"

var (
	// ErrWalletNotFound возвращается, когда кошелёк не найден
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
