package checkout

import "errors"

var (
	ErrIllegalTransition    = errors.New("illegal transition of checkout status")
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrAlreadyPlaced        = errors.New("order already placed")
	ErrOrderFailed          = errors.New("failed to place order")
	ErrAbandoned            = errors.New("checkout was abandoned")
	ErrNoReceipt            = errors.New("no order has been placed")
)
