package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	p := NewPasswordManager(testConfig())

	hash, err := p.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, p.VerifyPassword("secret1", hash))
	assert.Error(t, p.VerifyPassword("secret2", hash))
	assert.Error(t, p.VerifyPassword("secret1", ""))
}

func TestValidatePassword(t *testing.T) {
	p := NewPasswordManager(testConfig())

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"minimum length", "abcdef", false},
		{"too short", "abcde", true},
		{"blank", "      ", true},
		{"too long", strings.Repeat("a", 73), true},
		{"max length", strings.Repeat("a", 72), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInvalidCostFallsBackToDefault(t *testing.T) {
	cfg := testConfig()
	cfg.Security.BcryptCost = 99
	assert.Equal(t, 10, NewPasswordManager(cfg).cost)
}
