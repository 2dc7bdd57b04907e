package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Business errors.
	ErrEmptyItems          = errors.New("order requires at least one item")
	ErrEmptyCustomerName   = errors.New("customer name is required")
	ErrEmptyDescription    = errors.New("item description is required")
	ErrInvalidQuantity     = errors.New("quantity must be a positive whole number")
	ErrInvalidUnitPrice    = errors.New("unit price is out of range")
	ErrInvalidStatus       = errors.New("unknown order status")
	ErrDeliveryBeforeOrder = errors.New("delivery date precedes order date")
)
