package expire_bookings

import "errors"

var (
	ErrInternal = errors.New("expire_bookings - internal error")
)
