package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/soview/salesorders/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock

type Service interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ReplaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error

	AddItem(ctx context.Context, orderID uuid.UUID, item *domain.Item) (*domain.Item, error)
	UpdateItem(ctx context.Context, orderID uuid.UUID, itemID uuid.UUID, item *domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, orderID uuid.UUID, itemID uuid.UUID) error
}
