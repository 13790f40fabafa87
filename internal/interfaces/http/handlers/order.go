// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
)

// Orders is the order history surface used over HTTP
type Orders interface {
	ListOrders(ctx context.Context, userID uint, req *order.ListRequest) (*order.ListResponse, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*order.Order, error)
}

// OrderHandler handles the customer's order history
type OrderHandler struct {
	orders Orders
	log    logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders Orders, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log,
	}
}

// GetOrders handles GET /orders?page=&limit=
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.orders.ListOrders(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Page(c, result.Orders, result.Meta)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "order ID")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, o, "")
}
