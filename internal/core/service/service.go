package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/soview/salesorders/internal/core/domain"
	"github.com/soview/salesorders/internal/core/port"
	"github.com/soview/salesorders/internal/core/utils"
	"go.uber.org/zap"
)

// Number generation is random per attempt, so creation retries a few
// times before surfacing the conflict to the caller.
const maxNumberAttempts = 3

const maxQuantity = 10000

var maxUnitPrice = decimal.MustParse("1000000")

type Service struct {
	repo   port.Repository
	logger *zap.Logger
}

func NewService(repo port.Repository, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:   repo,
		logger: logger,
	}, nil
}

func (s *Service) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := validateHeader(order); err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	order.ID = uuid.New()
	if err := prepareItems(order.ID, order.Items); err != nil {
		return nil, err
	}

	total, err := domain.SumLineTotals(order.Items)
	if err != nil {
		s.logger.Error("sum line totals", zap.Error(err))
		return nil, domain.ErrInternal
	}
	order.TotalAmount = total

	// Initial status is always Draft regardless of caller input.
	order.Status = domain.OrderStatusDraft

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order.Number = utils.NewOrderNumber(now)

		newOrder, err := s.repo.CreateOrder(ctx, order)
		if err != nil {
			if errors.Is(err, domain.ErrConflictingData) {
				s.logger.Warn("order number collision",
					zap.String("number", order.Number))
				continue
			}
			s.logger.Error("create order", zap.Error(err))
			return nil, err
		}
		return newOrder, nil
	}

	return nil, domain.ErrConflictingData
}

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.ReadOrderWithItems(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Error("read order", zap.Error(err),
				zap.String("order", orderID.String()))
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	list, err := s.repo.ListOrders(ctx)
	if err != nil {
		s.logger.Error("list orders", zap.Error(err))
		return nil, err
	}
	return list, nil
}

// ReplaceOrder updates the header fields and swaps the entire item set.
// An empty replacement set is allowed and yields a zero total.
func (s *Service) ReplaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := validateHeader(order); err != nil {
		return nil, err
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusDraft
	}
	if !order.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	if err := prepareItems(order.ID, order.Items); err != nil {
		return nil, err
	}

	updated, err := s.repo.ReplaceOrder(ctx, order)
	if err != nil {
		if !errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Error("replace order", zap.Error(err),
				zap.String("order", order.ID.String()))
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	order, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		if !errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Error("update order status", zap.Error(err),
				zap.String("order", orderID.String()))
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	err := s.repo.DeleteOrder(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Error("delete order", zap.Error(err),
				zap.String("order", orderID.String()))
		}
		return err
	}
	return nil
}

func (s *Service) AddItem(ctx context.Context, orderID uuid.UUID, item *domain.Item) (*domain.Item, error) {
	item.OrderID = orderID
	if err := validateItem(item); err != nil {
		return nil, err
	}

	item.ID = uuid.New()
	lineTotal, err := domain.LineTotal(item.Quantity, item.UnitPrice)
	if err != nil {
		s.logger.Error("line total", zap.Error(err))
		return nil, domain.ErrInternal
	}
	item.LineTotal = lineTotal

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		if !errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Error("create item", zap.Error(err),
				zap.String("order", orderID.String()))
		}
		return nil, err
	}
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, orderID uuid.UUID, itemID uuid.UUID, item *domain.Item) (*domain.Item, error) {
	item.ID = itemID
	item.OrderID = orderID
	if err := validateItem(item); err != nil {
		return nil, err
	}

	lineTotal, err := domain.LineTotal(item.Quantity, item.UnitPrice)
	if err != nil {
		s.logger.Error("line total", zap.Error(err))
		return nil, domain.ErrInternal
	}
	item.LineTotal = lineTotal

	updated, err := s.repo.UpdateItem(ctx, item)
	if err != nil {
		if !errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Error("update item", zap.Error(err),
				zap.String("order", orderID.String()),
				zap.String("item", itemID.String()))
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, orderID uuid.UUID, itemID uuid.UUID) error {
	err := s.repo.DeleteItem(ctx, orderID, itemID)
	if err != nil {
		if !errors.Is(err, domain.ErrDataNotFound) {
			s.logger.Error("delete item", zap.Error(err),
				zap.String("order", orderID.String()),
				zap.String("item", itemID.String()))
		}
		return err
	}
	return nil
}

func validateHeader(order *domain.Order) error {
	if strings.TrimSpace(order.CustomerName) == "" {
		return domain.ErrEmptyCustomerName
	}
	if order.DeliveryDate.Before(order.OrderDate) {
		return domain.ErrDeliveryBeforeOrder
	}
	return nil
}

func validateItem(item *domain.Item) error {
	if strings.TrimSpace(item.Description) == "" {
		return domain.ErrEmptyDescription
	}
	if item.Quantity <= 0 || item.Quantity > maxQuantity {
		return domain.ErrInvalidQuantity
	}
	if item.UnitPrice.IsNeg() {
		return domain.ErrInvalidUnitPrice
	}
	if item.UnitPrice.Cmp(maxUnitPrice) > 0 {
		return domain.ErrInvalidUnitPrice
	}
	if item.UnitPrice.Scale() > 2 {
		return domain.ErrInvalidUnitPrice
	}
	return nil
}

// prepareItems validates each item, assigns ids and owning order, and
// computes line totals. Nothing is written if any item fails validation.
func prepareItems(orderID uuid.UUID, items []*domain.Item) error {
	for _, item := range items {
		item.OrderID = orderID
		if err := validateItem(item); err != nil {
			return err
		}
	}
	for _, item := range items {
		item.ID = uuid.New()
		lineTotal, err := domain.LineTotal(item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
		item.LineTotal = lineTotal
	}
	return nil
}
