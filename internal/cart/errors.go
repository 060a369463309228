package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrInvalidPrice    = errors.New("price must not be negative")
)
