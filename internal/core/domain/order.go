package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "Draft"
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusApproved  OrderStatus = "Approved"
	OrderStatusReceived  OrderStatus = "Received"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is a member of the status enumeration.
// Transitions between statuses are not restricted.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPending, OrderStatusApproved,
		OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the aggregate root. TotalAmount is derived data: after every
// committed mutation it equals the exact sum of the line totals of the
// order's current items.
type Order struct {
	ID              uuid.UUID
	Number          string
	CustomerName    string
	CustomerAddress string
	OrderDate       time.Time
	DeliveryDate    time.Time
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []*Item
}
