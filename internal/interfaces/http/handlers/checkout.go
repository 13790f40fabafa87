// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/checkout"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
)

// Checkout is the checkout service surface used over HTTP
type Checkout interface {
	CreateOrder(ctx context.Context, userID uint, req *checkout.CreateOrderRequest) (*checkout.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, userID uint, req *checkout.VerifyPaymentRequest) (*order.Order, error)
	GetTimeSlots() []checkout.TimeSlotOption
	GetPaymentMethods() []checkout.PaymentMethodOption
	SaveAddress(req *checkout.AddressInput) *checkout.AddressInput
}

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkout Checkout
	log      logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(svc Checkout, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		log:      log,
	}
}

// SaveAddress handles POST /checkout/address
func (h *CheckoutHandler) SaveAddress(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req checkout.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	response.OK(c, h.checkout.SaveAddress(&req), "Address saved")
}

// CreateOrder handles POST /checkout/create-order
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req checkout.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.checkout.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	message := "Order created, awaiting payment"
	if req.PaymentMethod == checkout.PaymentMethodCOD {
		message = "Order placed successfully"
	}
	response.Created(c, result, message)
}

// VerifyPayment handles POST /checkout/verify-payment
func (h *CheckoutHandler) VerifyPayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req checkout.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	o, err := h.checkout.VerifyPayment(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, o, "Payment verified successfully")
}

// GetTimeSlots handles GET /checkout/time-slots
func (h *CheckoutHandler) GetTimeSlots(c *gin.Context) {
	response.OK(c, h.checkout.GetTimeSlots(), "")
}

// GetPaymentMethods handles GET /checkout/payment-methods
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	response.OK(c, h.checkout.GetPaymentMethods(), "")
}
