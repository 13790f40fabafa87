// internal/infrastructure/database/postgres/address_repository.go
package postgres

import (
	"context"
	"errors"

	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"gorm.io/gorm"
)

// AddressRepository persists saved addresses
type AddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates a new address repository
func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// ListByUser returns the default address first, then newest
func (r *AddressRepository) ListByUser(ctx context.Context, userID uint) ([]user.Address, error) {
	var addresses []user.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	return addresses, err
}

// FindByID implements user.AddressRepository
func (r *AddressRepository) FindByID(ctx context.Context, userID, id uint) (*user.Address, error) {
	var a user.Address
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountByUser implements user.AddressRepository
func (r *AddressRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.Address{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Create implements user.AddressRepository
func (r *AddressRepository) Create(ctx context.Context, a *user.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault {
			if err := clearDefaults(tx, a.UserID, 0); err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	})
}

// Update implements user.AddressRepository
func (r *AddressRepository) Update(ctx context.Context, a *user.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault {
			if err := clearDefaults(tx, a.UserID, a.ID); err != nil {
				return err
			}
		}
		return tx.Save(a).Error
	})
}

// Delete implements user.AddressRepository
func (r *AddressRepository) Delete(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&user.Address{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrAddressNotFound
	}
	return nil
}

// SetDefault implements user.AddressRepository
func (r *AddressRepository) SetDefault(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefaults(tx, userID, id); err != nil {
			return err
		}

		result := tx.Model(&user.Address{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return user.ErrAddressNotFound
		}
		return nil
	})
}

func clearDefaults(tx *gorm.DB, userID, exceptID uint) error {
	q := tx.Model(&user.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_default", false).Error
}
