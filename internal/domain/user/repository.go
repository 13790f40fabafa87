// internal/domain/user/repository.go
package user

import (
	"context"
	"time"
)

// Repository persists users
type Repository interface {
	// FindByID returns ErrUserNotFound when no user matches
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)
	// EmailTaken reports whether another user (not exceptID) owns email
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	PhoneTaken(ctx context.Context, phone string, exceptID uint) (bool, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// AddressRepository persists saved addresses. Create, Update and SetDefault clear
// every other default of the user in the same transaction when the address is default.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]Address, error)
	// FindByID returns ErrAddressNotFound unless the address belongs to userID
	FindByID(ctx context.Context, userID, id uint) (*Address, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Create(ctx context.Context, address *Address) error
	Update(ctx context.Context, address *Address) error
	Delete(ctx context.Context, userID, id uint) error
	SetDefault(ctx context.Context, userID, id uint) error
}

// OTPRepository persists one-time codes
type OTPRepository interface {
	// Replace marks every unused code of the phone as used and stores otp
	Replace(ctx context.Context, otp *OTP) error
	// FindUsable returns the unused, unexpired code or ErrInvalidOTP
	FindUsable(ctx context.Context, phone, code string, now time.Time) (*OTP, error)
	MarkUsed(ctx context.Context, id uint) error
}

// SMSSender delivers verification codes
type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}
