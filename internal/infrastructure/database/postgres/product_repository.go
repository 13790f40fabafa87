// internal/infrastructure/database/postgres/product_repository.go
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/veggiefresh/grocery-backend/internal/domain/product"
	"gorm.io/gorm"
)

// ProductRepository reads the catalog
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("UnitPrices").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Category")
}

// FindActiveByID implements product.Repository
func (r *ProductRepository) FindActiveByID(ctx context.Context, id uint) (*product.Product, error) {
	var p product.Product
	err := r.withRelations(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindActiveBySlug implements product.Repository
func (r *ProductRepository) FindActiveBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var p product.Product
	err := r.withRelations(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActive implements product.Repository
func (r *ProductRepository) ListActive(ctx context.Context, filter product.ListFilter) ([]product.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&product.Product{}).Where("is_active = ?", true)

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []product.Product
	err := query.
		Preload("UnitPrices").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order("name ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListActiveCategories implements product.Repository
func (r *ProductRepository) ListActiveCategories(ctx context.Context) ([]product.Category, error) {
	var categories []product.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort ASC, name ASC").
		Find(&categories).Error
	return categories, err
}
