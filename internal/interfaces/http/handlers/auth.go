// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/middleware"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

// Accounts is the password sign-in surface of the user service
type Accounts interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error)
	Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*user.AuthResponse, error)
}

// PhoneVerifier runs the OTP sign-in flow
type PhoneVerifier interface {
	SendOTP(ctx context.Context, req *user.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req *user.VerifyOTPRequest) (*user.VerifyOTPResponse, error)
	CompleteProfile(ctx context.Context, tempToken string, req *user.CompleteProfileRequest) (*user.AuthResponse, error)
}

// GoogleLogin runs the OAuth sign-in flow
type GoogleLogin interface {
	AuthURL() (*user.GoogleAuthURL, error)
	Callback(ctx context.Context, code string) (*user.AuthResponse, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	accounts Accounts
	phones   PhoneVerifier
	google   GoogleLogin
	log      logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts Accounts, phones PhoneVerifier, google GoogleLogin, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		phones:   phones,
		google:   google,
		log:      log,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Created(c, result, "User registered successfully")
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "Login successful")
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req user.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.accounts.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "Token refreshed successfully")
}

// Logout handles user logout. Tokens are stateless, so the client discards them.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, nil, "Logged out successfully")
}

// SendOTP handles POST /auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req user.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.phones.SendOTP(c.Request.Context(), &req); err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"phone": req.Phone}, "OTP sent successfully")
}

// VerifyOTP handles POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req user.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.phones.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	message := "OTP verified successfully"
	if result.IsNewUser {
		message = "OTP verified, complete your profile"
	}
	response.OK(c, result, message)
}

// CompleteProfile handles POST /auth/complete-profile with the temp token
func (h *AuthHandler) CompleteProfile(c *gin.Context) {
	tempToken, ok := middleware.GetTempTokenFromContext(c)
	if !ok {
		response.Abort(c, http.StatusUnauthorized, string(apperror.KindUnauthorized), "Temporary token required")
		return
	}

	var req user.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.phones.CompleteProfile(c.Request.Context(), tempToken, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Created(c, result, "Profile completed successfully")
}

// GoogleURL handles GET /auth/google/url
func (h *AuthHandler) GoogleURL(c *gin.Context) {
	result, err := h.google.AuthURL()
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "")
}

// GoogleCallback handles GET /auth/google/callback?code=
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	result, err := h.google.Callback(c.Request.Context(), c.Query("code"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, result, "Google login successful")
}
