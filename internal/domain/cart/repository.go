// internal/domain/cart/repository.go
package cart

import (
	"context"

	"github.com/veggiefresh/grocery-backend/internal/domain/product"
)

// Repository persists carts
type Repository interface {
	// FindByUserID returns the user's cart with its items, or ErrCartNotFound
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)
	// Save writes the cart row and replaces its items in one transaction
	Save(ctx context.Context, cart *Cart) error
}

// ProductLookup is the read-only catalog view the cart prices against
type ProductLookup interface {
	FindActiveByID(ctx context.Context, id uint) (*product.Product, error)
}
