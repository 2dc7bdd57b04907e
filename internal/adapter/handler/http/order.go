package http

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/soview/salesorders/internal/core/domain"
	"github.com/soview/salesorders/internal/core/port"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type orderRequest struct {
	CustomerName    string        `json:"customerName"`
	CustomerAddress string        `json:"customerAddress"`
	OrderDate       string        `json:"orderDate"`
	DeliveryDate    string        `json:"deliveryDate"`
	Status          string        `json:"status"`
	Items           []itemRequest `json:"items"`
}

func (r *orderRequest) toDomain() (*domain.Order, error) {
	orderDate, err := time.Parse(dateLayout, r.OrderDate)
	if err != nil {
		return nil, domain.ErrBadRequest
	}
	deliveryDate, err := time.Parse(dateLayout, r.DeliveryDate)
	if err != nil {
		return nil, domain.ErrBadRequest
	}

	items := make([]*domain.Item, 0, len(r.Items))
	for _, ir := range r.Items {
		item, err := ir.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &domain.Order{
		CustomerName:    r.CustomerName,
		CustomerAddress: r.CustomerAddress,
		OrderDate:       orderDate,
		DeliveryDate:    deliveryDate,
		Status:          domain.OrderStatus(r.Status),
		Items:           items,
	}, nil
}

type orderResponse struct {
	ID              string          `json:"id"`
	SoNumber        string          `json:"soNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerAddress string          `json:"customerAddress"`
	OrderDate       string          `json:"orderDate"`
	DeliveryDate    string          `json:"deliveryDate"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Items           []itemResponse  `json:"items,omitempty"`
}

func newOrderResponse(order *domain.Order, withItems bool) orderResponse {
	resp := orderResponse{
		ID:              order.ID.String(),
		SoNumber:        order.Number,
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		OrderDate:       order.OrderDate.Format(dateLayout),
		DeliveryDate:    order.DeliveryDate.Format(dateLayout),
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if withItems {
		resp.Items = make([]itemResponse, 0, len(order.Items))
		for _, item := range order.Items {
			resp.Items = append(resp.Items, newItemResponse(item))
		}
	}
	return resp
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	list, err := oh.service.ListOrders(ctx)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]orderResponse, 0, len(list))
	for _, order := range list {
		result = append(result, newOrderResponse(order, false))
	}

	oh.handleSuccess(ctx, result)
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	var req orderRequest
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := req.toDomain()
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	newOrder, err := oh.service.CreateOrder(ctx, order)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, gin.H{"success": true, "orderId": newOrder.ID.String()})
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.GetOrder(ctx, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order, true))
}

// UpdateOrder serves both PUT variants: a body holding only a status field
// takes the narrow status-only path, anything else is a full header update
// with a wholesale item replacement.
func (oh *OrderHandler) UpdateOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	var fields map[string]json.RawMessage
	if err := ctx.ShouldBindBodyWithJSON(&fields); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	if rawStatus, ok := fields["status"]; ok && len(fields) == 1 {
		var status string
		if err := json.Unmarshal(rawStatus, &status); err != nil {
			oh.handleValidationError(ctx, domain.ErrBadRequest)
			return
		}

		order, err := oh.service.UpdateOrderStatus(ctx, orderID, domain.OrderStatus(status))
		if err != nil {
			oh.handleError(ctx, err)
			return
		}

		oh.handleSuccess(ctx, gin.H{"success": true, "salesOrder": newOrderResponse(order, false)})
		return
	}

	var req orderRequest
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := req.toDomain()
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	order.ID = orderID

	updated, err := oh.service.ReplaceOrder(ctx, order)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, gin.H{"success": true, "salesOrder": newOrderResponse(updated, false)})
}

func (oh *OrderHandler) DeleteOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	if err := oh.service.DeleteOrder(ctx, orderID); err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, gin.H{"success": true, "message": "sales order deleted"})
}
