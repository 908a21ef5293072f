package wallet

import "errors"

var (
	// ErrWalletNotFound возвращается, когда кошелёк не найден
	ErrWalletNotFound = errors.New("wallet.repository: wallet not found")

	// ErrPayoutNotFound возвращается, когда заявка на вывод не найдена
	ErrPayoutNotFound = errors.New("wallet.repository: payout request not found")

	// ErrInsufficientBalance возвращается, когда баланс не покрывает списание.
	// Проверка выполняется условным UPDATE: два конкурентных списания не могут
	// пройти по одному и тому же устаревшему балансу.
	ErrInsufficientBalance = errors.New("wallet.repository: insufficient balance")

	// ErrInsufficientMinutes возвращается, когда минут меньше, чем списывается
	ErrInsufficientMinutes = errors.New("wallet.repository: insufficient minutes")

	// ErrStatusConflict возвращается, когда CAS-переход статуса выплаты не прошёл
	ErrStatusConflict = errors.New("wallet.repository: payout status conflict")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("wallet.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("wallet.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("wallet.repository: failed to scan row")
)
