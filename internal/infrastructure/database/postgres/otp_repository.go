// internal/infrastructure/database/postgres/otp_repository.go
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"gorm.io/gorm"
)

// OTPRepository persists one-time codes
type OTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Replace invalidates every outstanding code of the phone and stores otp
func (r *OTPRepository) Replace(ctx context.Context, otp *user.OTP) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&user.OTP{}).
			Where("phone = ? AND is_used = ?", otp.Phone, false).
			Update("is_used", true).Error
		if err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

// FindUsable implements user.OTPRepository
func (r *OTPRepository) FindUsable(ctx context.Context, phone, code string, now time.Time) (*user.OTP, error) {
	var otp user.OTP
	err := r.db.WithContext(ctx).
		Where("phone = ? AND code = ? AND is_used = ? AND expires_at > ?", phone, code, false, now).
		Order("created_at DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// MarkUsed implements user.OTPRepository. Only the first caller flips the row.
func (r *OTPRepository) MarkUsed(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&user.OTP{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrInvalidOTP
	}
	return nil
}
