// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role is a user's access level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AddressType labels a saved address
type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

// User represents the user entity
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"not null;size:100" json:"name"`
	Email           *string        `gorm:"uniqueIndex;size:255" json:"email"`
	Phone           *string        `gorm:"uniqueIndex;size:20" json:"phone"`
	GoogleID        *string        `gorm:"uniqueIndex;size:64" json:"-"`
	PasswordHash    string         `gorm:"size:255" json:"-"` // Don't return in JSON
	AvatarURL       string         `gorm:"size:500" json:"avatarUrl"`
	City            string         `gorm:"size:100" json:"city,omitempty"`
	Role            Role           `gorm:"size:10;not null;default:'user'" json:"role"`
	IsPhoneVerified bool           `gorm:"default:false" json:"isPhoneVerified"`
	LastLoginAt     *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address represents a saved delivery address
type Address struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"-"`
	Type      AddressType `gorm:"size:10;not null;default:'home'" json:"type"`
	Name      string      `gorm:"size:100;not null" json:"name"`
	Line1     string      `gorm:"size:255;not null" json:"line1"`
	Line2     string      `gorm:"size:255" json:"line2,omitempty"`
	City      string      `gorm:"size:100;not null" json:"city"`
	State     string      `gorm:"size:100;not null" json:"state"`
	Pincode   string      `gorm:"size:10;not null" json:"pincode"`
	Country   string      `gorm:"size:60;not null;default:'India'" json:"country"`
	Phone     string      `gorm:"size:20" json:"phone,omitempty"`
	IsDefault bool        `gorm:"default:false" json:"isDefault"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OTP is a single-use phone verification code
type OTP struct {
	ID        uint      `gorm:"primaryKey"`
	Phone     string    `gorm:"not null;size:20;index:idx_otp_lookup"`
	Code      string    `gorm:"not null;size:4"`
	ExpiresAt time.Time `gorm:"not null"`
	IsUsed    bool      `gorm:"default:false;index:idx_otp_lookup"`
	CreatedAt time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// TableName overrides the table name for OTP
func (OTP) TableName() string {
	return "otps"
}

// BeforeSave keeps emails lowercase
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &email
	}
	return nil
}

// EmailValue returns the email or ""
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// PhoneValue returns the phone or ""
func (u *User) PhoneValue() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Usable reports whether the code can still be redeemed at now
func (o *OTP) Usable(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt)
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
