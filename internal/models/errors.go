package models

import "errors"

// Order lifecycle errors
var (
	ErrInvalidOrder          = errors.New("invalid order")
	ErrInvalidOrderStatus    = errors.New("invalid order status")
	ErrMenuNotFound          = errors.New("menu not found")
	ErrTableNotFound         = errors.New("order table not found")
	ErrTableEmpty            = errors.New("order table is empty")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCompleted = errors.New("order already completed")
)

// Catalog errors
var (
	ErrInvalidTable      = errors.New("invalid order table")
	ErrInvalidMenuGroup  = errors.New("invalid menu group")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidMenu       = errors.New("invalid menu")
	ErrMenuGroupNotFound = errors.New("menu group not found")
	ErrProductNotFound   = errors.New("product not found")
)
