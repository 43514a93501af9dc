package service

import "errors"

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPrice    = errors.New("price must be between 0 and 99999999.99 with at most two decimals")
	ErrInvalidStock    = errors.New("stock count must be between 0 and 250")

	ErrInvalidProduct          = errors.New("invalid product")
	ErrEmptyCart               = errors.New("order must contain at least one item")
	ErrInvalidQuantity         = errors.New("quantity must be between 1 and 10000")
	ErrOrderTotalTooLarge      = errors.New("order total exceeds the maximum allowed")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("order status transition not allowed")
	ErrOrderCreation           = errors.New("the order cannot be created")
	ErrOrderStatusConflict     = errors.New("order status changed concurrently")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)
