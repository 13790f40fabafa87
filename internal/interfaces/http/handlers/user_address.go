// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
)

// Addresses manages a user's saved addresses. Mutations return the full list.
type Addresses interface {
	GetUserAddresses(ctx context.Context, userID uint) ([]user.Address, error)
	CreateAddress(ctx context.Context, userID uint, req *user.AddressRequest) ([]user.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uint, req *user.AddressRequest) ([]user.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uint) ([]user.Address, error)
	SetDefaultAddress(ctx context.Context, userID, addressID uint) ([]user.Address, error)
}

// UserAddressHandler handles user address endpoints
type UserAddressHandler struct {
	addresses Addresses
	log       logrus.FieldLogger
}

// NewUserAddressHandler creates a new user address handler
func NewUserAddressHandler(addresses Addresses, log logrus.FieldLogger) *UserAddressHandler {
	return &UserAddressHandler{
		addresses: addresses,
		log:       log,
	}
}

// GetAddresses handles GET /profile/addresses
func (h *UserAddressHandler) GetAddresses(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.addresses.GetUserAddresses(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, list, "")
}

// CreateAddress handles POST /profile/addresses
func (h *UserAddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req user.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	list, err := h.addresses.CreateAddress(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Created(c, list, "Address added successfully")
}

// UpdateAddress handles PUT /profile/addresses/:addressId
func (h *UserAddressHandler) UpdateAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := pathID(c, "addressId", "address ID")
	if !ok {
		return
	}

	var req user.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	list, err := h.addresses.UpdateAddress(c.Request.Context(), userID, addressID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, list, "Address updated successfully")
}

// DeleteAddress handles DELETE /profile/addresses/:addressId
func (h *UserAddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := pathID(c, "addressId", "address ID")
	if !ok {
		return
	}

	list, err := h.addresses.DeleteAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, list, "Address deleted successfully")
}

// SetDefaultAddress handles PATCH /profile/addresses/:addressId/default
func (h *UserAddressHandler) SetDefaultAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := pathID(c, "addressId", "address ID")
	if !ok {
		return
	}

	list, err := h.addresses.SetDefaultAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, list, "Default address updated")
}
