// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
)

var (
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrEmailExists        = apperror.Conflict("Email already exists")
	ErrPhoneExists        = apperror.Conflict("Phone number already exists")
	ErrInvalidCredentials = apperror.New(apperror.KindInvalidCredentials, "invalid email or password")
	ErrInvalidToken       = apperror.New(apperror.KindInvalidToken, "invalid or expired token")
)

// Service handles user business logic
type Service struct {
	users           Repository
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	log             logrus.FieldLogger
	now             func() time.Time
}

// NewService creates a new user service
func NewService(users Repository, cfg *config.Config, log logrus.FieldLogger) *Service {
	return &Service{
		users:           users,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		log:             log,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,len=10,numeric"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,min=10"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Register creates a new password account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailExists
	}

	taken, err = s.users.PhoneTaken(ctx, req.Phone, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if taken {
		return nil, ErrPhoneExists
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Validation(err.Error(), map[string]string{"password": err.Error()})
	}

	user := &User{
		Name:         strings.TrimSpace(req.Name),
		Email:        stringPtr(email),
		Phone:        stringPtr(req.Phone),
		PasswordHash: hashedPassword,
		Role:         RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")

	return s.issueTokens(user)
}

// Login authenticates a user by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Accounts created through OTP or Google have no password
	if err := s.passwordManager.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, user)

	return s.issueTokens(user)
}

// RefreshToken issues a new token pair from a refresh token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken.WithCause(err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.issueTokens(user)
}

// GetProfile returns the user with its addresses
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies the provided fields to the user
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		taken, err := s.users.EmailTaken(ctx, email, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailExists
		}
		user.Email = stringPtr(email)
	}

	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		taken, err := s.users.PhoneTaken(ctx, phone, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		}
		if taken {
			return nil, ErrPhoneExists
		}
		if phone != user.PhoneValue() {
			user.IsPhoneVerified = false
		}
		user.Phone = stringPtr(phone)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// issueTokens signs an access/refresh pair for the user
func (s *Service) issueTokens(user *User) (*AuthResponse, error) {
	pair, err := s.jwtManager.GenerateTokenPair(user.ID, user.EmailValue(), string(user.Role))
	if err != nil {
		return nil, apperror.Internal("failed to issue tokens", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (s *Service) touchLastLogin(ctx context.Context, user *User) {
	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
}
