// internal/domain/user/otp_service.go
package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
)

var (
	ErrInvalidOTP        = apperror.Validation("Invalid or expired OTP", nil)
	ErrSMSDeliveryFailed = apperror.Gateway("Failed to send OTP", nil)
)

// OTPService runs the phone verification flow
type OTPService struct {
	users      Repository
	otps       OTPRepository
	sms        SMSSender
	jwtManager *auth.JWTManager
	expiry     time.Duration
	log        logrus.FieldLogger
	now        func() time.Time
	generate   func() (string, error)
}

// NewOTPService creates a new OTP service
func NewOTPService(users Repository, otps OTPRepository, sms SMSSender, cfg *config.Config, log logrus.FieldLogger) *OTPService {
	expiry := cfg.Security.OTPExpiry
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &OTPService{
		users:      users,
		otps:       otps,
		sms:        sms,
		jwtManager: auth.NewJWTManager(cfg),
		expiry:     expiry,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		generate:   GenerateOTP,
	}
}

// SendOTPRequest starts phone verification
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required,len=10,numeric"`
}

// VerifyOTPRequest redeems a code
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required,len=10,numeric"`
	OTP   string `json:"otp" binding:"required,len=4,numeric"`
}

// CompleteProfileRequest finishes a phone sign-up
type CompleteProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2"`
	Email string `json:"email" binding:"omitempty,email"`
	City  string `json:"city" binding:"required"`
}

// VerifyOTPResponse carries tokens for a known phone, or a temp token for a new one
type VerifyOTPResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
	TempToken    string `json:"tempToken,omitempty"`
	IsNewUser    bool   `json:"isNewUser"`
}

// GenerateOTP returns a uniformly random code in [1000, 9999]
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

// SendOTP issues a fresh code for the phone, invalidating earlier unused ones
func (s *OTPService) SendOTP(ctx context.Context, req *SendOTPRequest) error {
	code, err := s.generate()
	if err != nil {
		return apperror.Internal("failed to generate OTP", err)
	}

	otp := &OTP{
		Phone:     req.Phone,
		Code:      code,
		ExpiresAt: s.now().Add(s.expiry),
	}
	if err := s.otps.Replace(ctx, otp); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.sms.SendOTP(ctx, req.Phone, code); err != nil {
		s.log.WithError(err).WithField("phone", maskPhone(req.Phone)).Error("OTP delivery failed")
		return ErrSMSDeliveryFailed.WithCause(err)
	}

	s.log.WithField("phone", maskPhone(req.Phone)).Info("OTP sent")
	return nil
}

// VerifyOTP consumes a code. A known phone gets a token pair; an unknown one gets a
// temp token for CompleteProfile.
func (s *OTPService) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*VerifyOTPResponse, error) {
	otp, err := s.otps.FindUsable(ctx, req.Phone, req.OTP, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.otps.MarkUsed(ctx, otp.ID); err != nil {
		return nil, fmt.Errorf("failed to consume OTP: %w", err)
	}

	user, err := s.users.FindByPhone(ctx, req.Phone)
	switch {
	case errors.Is(err, ErrUserNotFound):
		tempToken, err := s.jwtManager.GenerateTempToken(req.Phone)
		if err != nil {
			return nil, apperror.Internal("failed to issue temp token", err)
		}
		return &VerifyOTPResponse{TempToken: tempToken, IsNewUser: true}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	user.IsPhoneVerified = true
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	pair, err := s.jwtManager.GenerateTokenPair(user.ID, user.EmailValue(), string(user.Role))
	if err != nil {
		return nil, apperror.Internal("failed to issue tokens", err)
	}

	return &VerifyOTPResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		IsNewUser:    false,
	}, nil
}

// CompleteProfile creates the phone-verified account named by a temp token
func (s *OTPService) CompleteProfile(ctx context.Context, tempToken string, req *CompleteProfileRequest) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateTempToken(tempToken)
	if err != nil {
		return nil, ErrInvalidToken.WithCause(err)
	}

	taken, err := s.users.PhoneTaken(ctx, claims.Phone, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if taken {
		return nil, ErrPhoneExists
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" {
		taken, err := s.users.EmailTaken(ctx, email, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	now := s.now()
	user := &User{
		Name:            strings.TrimSpace(req.Name),
		Email:           stringPtr(email),
		Phone:           stringPtr(claims.Phone),
		City:            strings.TrimSpace(req.City),
		Role:            RoleUser,
		IsPhoneVerified: true,
		LastLoginAt:     &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("phone user registered")

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

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
