package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	handler "github.com/soview/salesorders/internal/adapter/handler/http"
	"github.com/soview/salesorders/internal/core/domain"
	"github.com/soview/salesorders/internal/core/port/mock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, svc *mock.MockService) *handler.Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()

	orderHandler, err := handler.NewOrderHandler(svc, logger)
	assert.NoError(t, err)
	itemHandler, err := handler.NewItemHandler(svc, logger)
	assert.NoError(t, err)

	r, err := handler.NewRouter(nil, orderHandler, itemHandler)
	assert.NoError(t, err)
	return r
}

func orderFixture(orderID uuid.UUID) *domain.Order {
	return &domain.Order{
		ID:              orderID,
		Number:          "SO-20240307-0042",
		CustomerName:    "Acme Corp",
		CustomerAddress: "1 Industrial Way, Springfield",
		OrderDate:       time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		DeliveryDate:    time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC),
		TotalAmount:     decimal.MustParse("950.00"),
		Status:          domain.OrderStatusDraft,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	svc := mock.NewMockService(mockCtrl)
	orderID := uuid.New()
	svc.EXPECT().ListOrders(gomock.Any()).
		Return([]*domain.Order{orderFixture(orderID)}, nil)

	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/sales-orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, orderID.String(), resp[0]["id"])
	assert.Equal(t, "SO-20240307-0042", resp[0]["soNumber"])
	assert.Equal(t, "950.00", resp[0]["totalAmount"])
	assert.Nil(t, resp[0]["items"])
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	body := `{
		"customerName": "Acme Corp",
		"customerAddress": "1 Industrial Way, Springfield",
		"orderDate": "2024-03-07",
		"deliveryDate": "2024-03-21",
		"items": [
			{"description": "Widget", "quantity": 5, "unitPrice": "100.00"},
			{"description": "Gadget", "quantity": 3, "unitPrice": "150.00"}
		]
	}`

	t.Run("created", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		svc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
				assert.Equal(t, "Acme Corp", o.CustomerName)
				assert.Len(t, o.Items, 2)
				assert.Equal(t, "100.00", o.Items[0].UnitPrice.String())
				o.ID = orderID
				return o, nil
			})

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/sales-orders", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, orderID.String(), resp["orderId"])
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/sales-orders", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed unit price", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		r := newTestRouter(t, svc)

		bad := `{
			"customerName": "Acme",
			"customerAddress": "addr",
			"orderDate": "2024-03-07",
			"deliveryDate": "2024-03-21",
			"items": [{"description": "Widget", "quantity": 5, "unitPrice": "not-a-number"}]
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/sales-orders", bytes.NewBufferString(bad))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		r := newTestRouter(t, svc)

		bad := `{
			"customerName": "Acme",
			"customerAddress": "addr",
			"orderDate": "07.03.2024",
			"deliveryDate": "2024-03-21",
			"items": [{"description": "Widget", "quantity": 5, "unitPrice": "100.00"}]
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/sales-orders", bytes.NewBufferString(bad))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation error mapped", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		svc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			Return(nil, domain.ErrInvalidQuantity)

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/sales-orders", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("found with items", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		order := orderFixture(orderID)
		order.Items = []*domain.Item{
			{ID: uuid.New(), OrderID: orderID, Description: "Widget", Quantity: 5,
				UnitPrice: decimal.MustParse("100.00"), LineTotal: decimal.MustParse("500.00")},
		}
		svc.EXPECT().GetOrder(gomock.Any(), orderID).Return(order, nil)

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/sales-orders/"+orderID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "2024-03-07", resp["orderDate"])
		items, ok := resp["items"].([]any)
		assert.True(t, ok)
		assert.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.Equal(t, "500.00", item["lineTotal"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		svc.EXPECT().GetOrder(gomock.Any(), orderID).Return(nil, domain.ErrDataNotFound)

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/sales-orders/"+orderID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/sales-orders/not-a-uuid", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_UpdateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("status only body takes the narrow path", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		updated := orderFixture(orderID)
		updated.Status = domain.OrderStatusApproved
		svc.EXPECT().UpdateOrderStatus(gomock.Any(), orderID, domain.OrderStatusApproved).
			Return(updated, nil)

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodPut, "/api/sales-orders/"+orderID.String(),
			bytes.NewBufferString(`{"status": "Approved"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		so := resp["salesOrder"].(map[string]any)
		assert.Equal(t, "Approved", so["status"])
	})

	t.Run("full body replaces order", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		svc.EXPECT().ReplaceOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
				assert.Equal(t, orderID, o.ID)
				assert.Empty(t, o.Items)
				result := orderFixture(orderID)
				result.TotalAmount = decimal.Zero
				return result, nil
			})

		r := newTestRouter(t, svc)

		body := `{
			"customerName": "Acme Corp",
			"customerAddress": "1 Industrial Way, Springfield",
			"orderDate": "2024-03-07",
			"deliveryDate": "2024-03-21",
			"status": "Draft",
			"items": []
		}`
		req := httptest.NewRequest(http.MethodPut, "/api/sales-orders/"+orderID.String(),
			bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		so := resp["salesOrder"].(map[string]any)
		assert.Equal(t, "0", so["totalAmount"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		svc.EXPECT().UpdateOrderStatus(gomock.Any(), orderID, domain.OrderStatusPending).
			Return(nil, domain.ErrDataNotFound)

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodPut, "/api/sales-orders/"+orderID.String(),
			bytes.NewBufferString(`{"status": "Pending"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_DeleteOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("deleted", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		svc.EXPECT().DeleteOrder(gomock.Any(), orderID).Return(nil)

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodDelete, "/api/sales-orders/"+orderID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		orderID := uuid.New()
		svc.EXPECT().DeleteOrder(gomock.Any(), orderID).Return(domain.ErrDataNotFound)

		r := newTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodDelete, "/api/sales-orders/"+orderID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
