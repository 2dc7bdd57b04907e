package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/soview/salesorders/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

// Repository is the order store. Every mutating call that touches more
// than one row runs as a single transaction; concurrent mutations of the
// same order serialize on the order header row, mutations of different
// orders do not block each other.
type Repository interface {
	// Order
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ReadOrderWithItems(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ReplaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error

	// Items. Mutations recompute the owning order's total before commit.
	CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, orderID uuid.UUID, itemID uuid.UUID) error

	// RecomputeTotal re-derives the order total from the stored item set.
	RecomputeTotal(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
}
