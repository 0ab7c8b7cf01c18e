package models

import "errors"

// Sentinel errors shared by the stores and services. Handlers map these
// to HTTP statuses with errors.Is; anything else is an opaque 500.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNotFound        = errors.New("order not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("not authorized for this order")
	ErrInvalidOTP           = errors.New("invalid otp")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
)
