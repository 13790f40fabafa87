// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

// InvoiceRenderer produces a PDF invoice for an order
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orders   Orders
	invoices InvoiceRenderer
	log      logrus.FieldLogger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders Orders, invoices InvoiceRenderer, log logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{
		orders:   orders,
		invoices: invoices,
		log:      log,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "order ID")
	if !ok {
		return
	}

	// Scoped to the owner, others see not found
	o, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	pdfBuffer, err := h.invoices.GenerateInvoice(o)
	if err != nil {
		response.Error(c, h.log, apperror.Internal("failed to generate invoice", err))
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", o.OrderNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
