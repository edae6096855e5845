package domain

import "errors"

// Error kinds surfaced by the order lifecycle engine. Every failure is
// terminal for the request; there is no retryable class.
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrReturnNotFound         = errors.New("return request not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotOwner               = errors.New("order does not belong to caller")
	ErrOrderNotDelivered      = errors.New("order not delivered")
	ErrValidation             = errors.New("validation failed")
)
