// internal/infrastructure/database/postgres/user_repository.go
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"gorm.io/gorm"
)

// UserRepository persists users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID implements user.Repository
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail implements user.Repository
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindByPhone implements user.Repository
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*user.User, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

// FindByGoogleID implements user.Repository
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	return r.findOne(ctx, "google_id = ?", googleID)
}

// EmailTaken implements user.Repository
func (r *UserRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.taken(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)), exceptID)
}

// PhoneTaken implements user.Repository
func (r *UserRepository) PhoneTaken(ctx context.Context, phone string, exceptID uint) (bool, error) {
	return r.taken(ctx, "phone = ?", phone, exceptID)
}

func (r *UserRepository) taken(ctx context.Context, query string, value string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&user.User{}).Where(query, value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create implements user.Repository
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// Update implements user.Repository
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Omit("Addresses").Save(u).Error
}
