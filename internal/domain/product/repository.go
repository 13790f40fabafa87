// internal/domain/product/repository.go
package product

import (
	"context"

	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pagination"
)

// ErrProductNotFound is returned for missing or inactive products
var ErrProductNotFound = apperror.NotFound("product not found")

// ListFilter narrows a product listing
type ListFilter struct {
	CategoryID uint
	Query      string
	pagination.Params
}

// Repository reads the catalog
type Repository interface {
	// FindActiveByID returns an active product with its unit prices and images,
	// or ErrProductNotFound
	FindActiveByID(ctx context.Context, id uint) (*Product, error)
	FindActiveBySlug(ctx context.Context, slug string) (*Product, error)
	ListActive(ctx context.Context, filter ListFilter) ([]Product, int64, error)
	ListActiveCategories(ctx context.Context) ([]Category, error)
}

// CategoryCache stores the category listing between requests
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]Category, bool)
	SetCategories(ctx context.Context, categories []Category)
}
