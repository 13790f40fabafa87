package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTokenExpiry)
	assert.Equal(t, 10*time.Minute, cfg.JWT.TempTokenExpiry)
	assert.Equal(t, 5*time.Minute, cfg.Security.OTPExpiry)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.True(t, cfg.Checkout.DeliveryFee.Equal(decimal.NewFromInt(40)))
	assert.True(t, cfg.Checkout.FreeDeliveryThreshold.Equal(decimal.NewFromInt(200)))
	assert.False(t, cfg.RazorpayConfigured())
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DELIVERY_FEE", "25.50")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("JWT_ACCESS_EXPIRE", "15m")

	cfg := FromEnv()

	assert.Equal(t, "25.5", cfg.Checkout.DeliveryFee.String())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.External.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)
}

func TestValidate(t *testing.T) {
	t.Run("short jwt secret", func(t *testing.T) {
		cfg := FromEnv()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("unknown timezone", func(t *testing.T) {
		cfg := FromEnv()
		cfg.App.Timezone = "Mars/Olympus"
		assert.ErrorContains(t, cfg.Validate(), "APP_TIMEZONE")
		assert.Equal(t, time.UTC, cfg.Location())
	})

	t.Run("razorpay key without secret", func(t *testing.T) {
		cfg := FromEnv()
		cfg.External.Razorpay.KeyID = "rzp_test_123"
		assert.ErrorContains(t, cfg.Validate(), "RAZORPAY_KEY_SECRET")
	})

	t.Run("production requires gateway", func(t *testing.T) {
		cfg := FromEnv()
		cfg.App.Environment = "production"
		assert.ErrorContains(t, cfg.Validate(), "production")

		cfg.External.Razorpay.KeyID = "rzp_live_1"
		cfg.External.Razorpay.KeySecret = "secret"
		assert.NoError(t, cfg.Validate())
		assert.True(t, cfg.RazorpayConfigured())
	})

	t.Run("negative fee", func(t *testing.T) {
		cfg := FromEnv()
		cfg.Checkout.DeliveryFee = decimal.NewFromInt(-1)
		assert.Error(t, cfg.Validate())
	})
}
