package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/soview/salesorders/internal/core/domain"
	"github.com/soview/salesorders/internal/core/port"
	"go.uber.org/zap"
)

type ItemHandler struct {
	Handler
	service port.Service
}

func NewItemHandler(service port.Service, logger *zap.Logger) (*ItemHandler, error) {
	return &ItemHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

// Unit prices travel as decimal strings so the boundary never goes
// through float64.
type itemRequest struct {
	Description string `json:"description"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
}

func (r *itemRequest) toDomain() (*domain.Item, error) {
	unitPrice, err := decimal.Parse(r.UnitPrice)
	if err != nil {
		return nil, domain.ErrBadRequest
	}
	return &domain.Item{
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   unitPrice,
	}, nil
}

type itemResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"orderId"`
	Description string          `json:"description"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

func newItemResponse(item *domain.Item) itemResponse {
	return itemResponse{
		ID:          item.ID.String(),
		OrderID:     item.OrderID.String(),
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
	}
}

func (ih *ItemHandler) AddItem(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ih.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	var req itemRequest
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		ih.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	item, err := req.toDomain()
	if err != nil {
		ih.handleValidationError(ctx, err)
		return
	}

	created, err := ih.service.AddItem(ctx, orderID, item)
	if err != nil {
		ih.handleError(ctx, err)
		return
	}

	ih.handleSuccess(ctx, gin.H{"success": true, "item": newItemResponse(created)})
}

func (ih *ItemHandler) UpdateItem(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ih.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}
	itemID, err := uuid.Parse(ctx.Param("itemId"))
	if err != nil {
		ih.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	var req itemRequest
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		ih.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	item, err := req.toDomain()
	if err != nil {
		ih.handleValidationError(ctx, err)
		return
	}

	updated, err := ih.service.UpdateItem(ctx, orderID, itemID, item)
	if err != nil {
		ih.handleError(ctx, err)
		return
	}

	ih.handleSuccess(ctx, gin.H{"success": true, "item": newItemResponse(updated)})
}

func (ih *ItemHandler) DeleteItem(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ih.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}
	itemID, err := uuid.Parse(ctx.Param("itemId"))
	if err != nil {
		ih.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	if err := ih.service.DeleteItem(ctx, orderID, itemID); err != nil {
		ih.handleError(ctx, err)
		return
	}

	ih.handleSuccess(ctx, gin.H{"success": true, "message": "item deleted"})
}
