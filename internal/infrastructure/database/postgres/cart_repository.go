// internal/infrastructure/database/postgres/cart_repository.go
package postgres

import (
	"context"
	"errors"

	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"gorm.io/gorm"
)

// CartRepository persists carts and their lines
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// FindByUserID implements cart.Repository
func (r *CartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("user_id = ?", userID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []cart.CartItem{}
	}
	return &c, nil
}

// Save writes the cart row and replaces its lines
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := c.Items

		// Items are written below; Omit keeps GORM from upserting them here
		if err := tx.Omit("Items").Save(c).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}

		for i := range items {
			items[i].ID = 0
			items[i].CartID = c.ID
		}
		return tx.Create(&items).Error
	})
}
