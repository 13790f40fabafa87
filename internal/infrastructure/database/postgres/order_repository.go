// internal/infrastructure/database/postgres/order_repository.go
package postgres

import (
	"context"
	"errors"

	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Columns an order may change after it is placed
var mutableOrderColumns = []string{
	"status",
	"payment_provider",
	"payment_status",
	"payment_order_id",
	"payment_payment_id",
	"payment_signature",
	"payment_paid_at",
	"confirmed_at",
	"delivered_at",
	"cancelled_at",
	"updated_at",
}

// OrderRepository persists orders
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order together with its items and status history
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}

// FindByID implements order.Repository
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var o order.Order
	err := r.withRelations(ctx).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByIDForUser implements order.Repository
func (r *OrderRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*order.Order, error) {
	var o order.Order
	err := r.withRelations(ctx).Where("id = ? AND user_id = ?", id, userID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser implements order.Repository
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint, params pagination.Params) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("user_id = ?", userID)
	return r.page(query, params)
}

// List implements order.Repository
func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return r.page(query, filter.Params)
}

func (r *OrderRepository) page(query *gorm.DB, params pagination.Params) ([]order.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []order.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("created_at DESC, id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update saves the mutable columns and appends history when given
func (r *OrderRepository) Update(ctx context.Context, o *order.Order, history *order.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(o).
			Select(mutableOrderColumns).
			Omit("Items", "StatusHistory").
			Updates(o)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return order.ErrOrderNotFound
		}

		if history == nil {
			return nil
		}
		history.OrderID = o.ID
		return tx.Create(history).Error
	})
}
