package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/infrastructure/database/redis"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
)

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		UserID uint   `json:"userId"`
		Role   string `json:"role"`
	} `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func jwtManager() *auth.JWTManager {
	cfg := &config.Config{}
	cfg.App.Name = "grocery-test"
	cfg.JWT.Secret = "middleware-secret-that-is-long-enough"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 720 * time.Hour
	cfg.JWT.TempTokenExpiry = 10 * time.Minute
	return auth.NewJWTManager(cfg)
}

func authRouter(m *auth.JWTManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(m), func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"userId": id, "role": c.GetString(ctxUserRole)}})
	})
	r.GET("/admin", AuthMiddleware(m), AdminMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	r.POST("/complete", TempAuthMiddleware(m), func(c *gin.Context) {
		token, ok := GetTempTokenFromContext(c)
		c.JSON(http.StatusOK, gin.H{"success": ok && token != ""})
	})
	return r
}

func do(r http.Handler, method, path, token string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body envelope
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthMiddleware(t *testing.T) {
	m := jwtManager()
	r := authRouter(m)

	access, err := m.GenerateAccessToken(7, "asha@example.com", "user")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(7)
	require.NoError(t, err)

	t.Run("missing header is 401", func(t *testing.T) {
		w, body := do(r, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, body.Success)
		assert.Equal(t, "unauthorized", body.Error)
	})

	t.Run("malformed header is 401", func(t *testing.T) {
		w, _ := do(r, http.MethodGet, "/me", "Token "+access)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is 403", func(t *testing.T) {
		w, body := do(r, http.MethodGet, "/me", "Bearer not-a-jwt")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "invalid_token", body.Error)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		w, _ := do(r, http.MethodGet, "/me", "Bearer "+refresh)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("valid access token", func(t *testing.T) {
		w, body := do(r, http.MethodGet, "/me", "Bearer "+access)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(7), body.Data.UserID)
		assert.Equal(t, "user", body.Data.Role)
	})
}

func TestAdminMiddleware(t *testing.T) {
	m := jwtManager()
	r := authRouter(m)

	customer, _ := m.GenerateAccessToken(7, "asha@example.com", "user")
	admin, _ := m.GenerateAccessToken(1, "admin@veggiefresh.in", "admin")

	w, body := do(r, http.MethodGet, "/admin", "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", body.Error)

	w, _ = do(r, http.MethodGet, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTempAuthMiddleware(t *testing.T) {
	m := jwtManager()
	r := authRouter(m)

	temp, err := m.GenerateTempToken("9876543210")
	require.NoError(t, err)
	access, _ := m.GenerateAccessToken(7, "asha@example.com", "user")

	w, body := do(r, http.MethodPost, "/complete", "Bearer "+temp)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)

	w, _ = do(r, http.MethodPost, "/complete", "Bearer "+access)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int) (*redis.RateLimitResult, error) {
	args := m.Called(ctx, key, limit)
	res, _ := args.Get(0).(*redis.RateLimitResult)
	return res, args.Error(1)
}

func limitedRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(l, "global", 2, logrus.New()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRateLimit(t *testing.T) {
	reset := time.Now().Add(30 * time.Second)

	t.Run("within limit sets headers", func(t *testing.T) {
		l := new(MockLimiter)
		l.On("Allow", mock.Anything, mock.MatchedBy(func(k string) bool { return len(k) > len("global:") }), 2).
			Return(&redis.RateLimitResult{Allowed: true, Limit: 2, Remaining: 1, ResetAt: reset}, nil)

		w, _ := do(limitedRouter(l), http.MethodGet, "/ping", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
		l.AssertExpectations(t)
	})

	t.Run("over limit is 429", func(t *testing.T) {
		l := new(MockLimiter)
		l.On("Allow", mock.Anything, mock.Anything, 2).
			Return(&redis.RateLimitResult{Allowed: false, Limit: 2, Remaining: 0, ResetAt: reset}, nil)

		w, body := do(limitedRouter(l), http.MethodGet, "/ping", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "rate_limited", body.Error)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		l := new(MockLimiter)
		l.On("Allow", mock.Anything, mock.Anything, 2).Return(nil, errors.New("connection refused"))

		w, _ := do(limitedRouter(l), http.MethodGet, "/ping", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRequestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.ContentLength = 1024
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"http://localhost:3000", "*.veggiefresh.in"}

	assert.True(t, isOriginAllowed("http://localhost:3000", allowed))
	assert.True(t, isOriginAllowed("https://shop.veggiefresh.in", allowed))
	assert.False(t, isOriginAllowed("https://evilveggiefresh.in", allowed))
	assert.False(t, isOriginAllowed("http://localhost:4000", allowed))
}
