// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
)

// Carts is the cart service surface used over HTTP
type Carts interface {
	GetCart(ctx context.Context, userID uint) (*cart.Cart, error)
	AddItem(ctx context.Context, userID uint, req *cart.AddItemRequest) (*cart.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uint, req *cart.UpdateItemRequest) (*cart.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uint) (*cart.Cart, error)
	Clear(ctx context.Context, userID uint) (*cart.Cart, error)
}

// CartHandler handles cart endpoints
type CartHandler struct {
	carts Carts
	log   logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts Carts, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "")
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.carts.AddItem(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "Item added to cart successfully")
}

// UpdateCartItem handles PATCH /cart/items/:productId. The optional ?unit=
// query selects which line of the product to change.
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product ID")
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.TargetUnit = pricing.Unit(c.Query("unit"))

	result, err := h.carts.UpdateItem(c.Request.Context(), userID, productID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "Cart item updated successfully")
}

// RemoveFromCart handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product ID")
	if !ok {
		return
	}

	result, err := h.carts.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "Item removed from cart successfully")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.carts.Clear(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "Cart cleared successfully")
}
