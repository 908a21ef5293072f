package resolve_payout

import "errors"

var (
	ErrPayoutNotFound = errors.New("resolve_payout - payout request not found")
	ErrInvalidState   = errors.New("resolve_payout - payout request already resolved")
	ErrInvalidInput   = errors.New("resolve_payout - invalid input")
	ErrInternal       = errors.New("resolve_payout - internal error")
)
