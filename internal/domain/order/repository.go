// internal/domain/order/repository.go
package order

import (
	"context"

	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pagination"
)

// ErrOrderNotFound is returned when an order does not exist or is not the caller's
var ErrOrderNotFound = apperror.NotFound("order not found")

// ListFilter narrows an admin order listing
type ListFilter struct {
	Status OrderStatus
	pagination.Params
}

// Repository persists orders
type Repository interface {
	// Create inserts the order with its items and initial status history
	Create(ctx context.Context, order *Order) error
	// FindByID returns the order with items, or ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)
	// FindByIDForUser is FindByID scoped to the owner
	FindByIDForUser(ctx context.Context, userID, id uint) (*Order, error)
	// ListByUser returns the user's orders newest first
	ListByUser(ctx context.Context, userID uint, params pagination.Params) ([]Order, int64, error)
	// List returns all orders newest first, for back-office use
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	// Update saves status, payment and timestamps, appending history when given
	Update(ctx context.Context, order *Order, history *OrderStatusHistory) error
}
