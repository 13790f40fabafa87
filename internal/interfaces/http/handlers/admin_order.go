// internal/interfaces/http/handlers/admin_order.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/export"
)

// OrderAdmin is the back-office order surface
type OrderAdmin interface {
	UpdateStatus(ctx context.Context, adminID, orderID uint, req *order.UpdateStatusRequest) (*order.Order, error)
	ListForExport(ctx context.Context, status order.OrderStatus) ([]order.Order, error)
}

// OrderFeed streams order events to a websocket until it closes
type OrderFeed interface {
	Serve(ctx context.Context, conn *websocket.Conn)
}

// AdminOrderHandler handles back-office order endpoints
type AdminOrderHandler struct {
	orders   OrderAdmin
	feed     OrderFeed
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewAdminOrderHandler creates a new admin order handler. checkOrigin decides
// which browser origins may open the live feed.
func NewAdminOrderHandler(orders OrderAdmin, feed OrderFeed, checkOrigin func(r *http.Request) bool, log logrus.FieldLogger) *AdminOrderHandler {
	return &AdminOrderHandler{
		orders: orders,
		feed:   feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: log,
		now: time.Now,
	}
}

// UpdateOrderStatus handles PATCH /admin/orders/:id/status
func (h *AdminOrderHandler) UpdateOrderStatus(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "order ID")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), adminID, orderID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, o, "Order status updated")
}

// ExportOrders handles GET /admin/orders/export?status=
func (h *AdminOrderHandler) ExportOrders(c *gin.Context) {
	orders, err := h.orders.ListForExport(c.Request.Context(), order.OrderStatus(c.Query("status")))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", h.now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Status(http.StatusOK)

	if err := export.WriteOrders(c.Writer, orders); err != nil {
		// headers are already sent
		h.log.WithError(err).Error("failed to write order export")
		_ = c.Error(apperror.Internal("failed to write order export", err))
	}
}

// OrderFeed handles GET /admin/orders/feed by upgrading to a websocket
func (h *AdminOrderHandler) OrderFeed(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client
		h.log.WithError(err).Debug("order feed upgrade failed")
		return
	}

	h.feed.Serve(c.Request.Context(), conn)
}
