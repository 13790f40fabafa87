// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
)

const (
	ctxUserID     = "user_id"
	ctxUserEmail  = "user_email"
	ctxUserRole   = "user_role"
	ctxTempPhone  = "temp_phone"
	ctxClaimsKey  = "token_claims"
	ctxTempToken  = "temp_token"
	bearerMissing = "Authorization header required"
)

// TokenValidator validates signed tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
	ValidateTempToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware authenticates requests with an access token. A missing or
// malformed header is 401; a token that fails validation is 403.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := tokens.ValidateAccessToken(tokenString)
		if err != nil {
			response.Abort(c, http.StatusForbidden, string(apperror.KindInvalidToken), "Invalid or expired token")
			return
		}

		// Store user information in context
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)
		c.Set(ctxClaimsKey, claims)

		c.Next()
	}
}

// TempAuthMiddleware accepts only the short-lived phone sign-up token
func TempAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := tokens.ValidateTempToken(tokenString)
		if err != nil {
			response.Abort(c, http.StatusForbidden, string(apperror.KindInvalidToken), "Invalid or expired token")
			return
		}

		c.Set(ctxTempPhone, claims.Phone)
		c.Set(ctxTempToken, tokenString)
		c.Set(ctxClaimsKey, claims)

		c.Next()
	}
}

// AdminMiddleware ensures the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxUserRole)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, string(apperror.KindUnauthorized), "Authentication required")
			return
		}

		if r, _ := role.(string); r != string(user.RoleAdmin) {
			response.Abort(c, http.StatusForbidden, string(apperror.KindForbidden), "Admin access required")
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Abort(c, http.StatusUnauthorized, string(apperror.KindUnauthorized), bearerMissing)
		return "", false
	}

	tokenString := auth.ExtractTokenFromHeader(authHeader)
	if tokenString == "" {
		response.Abort(c, http.StatusUnauthorized, string(apperror.KindUnauthorized), "Invalid authorization header format")
		return "", false
	}
	return tokenString, true
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok && id != 0
}

// GetUserEmailFromContext extracts user email from gin context
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get(ctxUserEmail)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetString(ctxUserRole) == string(user.RoleAdmin)
}

// GetTempTokenFromContext returns the raw sign-up token accepted by TempAuthMiddleware
func GetTempTokenFromContext(c *gin.Context) (string, bool) {
	token := c.GetString(ctxTempToken)
	return token, token != ""
}
