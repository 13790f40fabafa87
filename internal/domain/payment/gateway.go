// internal/domain/payment/gateway.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CreateOrderRequest is a remote payment order to open
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"` // minor units
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// GatewayOrder is the provider's view of a payment order
type GatewayOrder struct {
	ID        string                 `json:"id"`
	Entity    string                 `json:"entity"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	Receipt   string                 `json:"receipt"`
	Status    string                 `json:"status"`
	Notes     map[string]interface{} `json:"notes"`
	CreatedAt int64                  `json:"created_at"`
}

// Gateway creates remote payment orders and checks payment callbacks
type Gateway interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*GatewayOrder, error)
	// VerifySignature checks the callback signature for a gateway order and payment
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	// KeyID is the public key the storefront opens checkout with; empty for the mock
	KeyID() string
	Configured() bool
}

// Signature returns hex(HMAC_SHA256(secret, gatewayOrderID + "|" + paymentID))
func Signature(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares a callback signature in constant time
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	expected := Signature(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// MockGateway stands in for the provider when no credentials are configured.
// Order ids are deterministic: order_mock_<receipt>.
type MockGateway struct {
	secret string
}

// NewMockGateway creates the development gateway. Signatures are still checked,
// against secret (normally empty).
func NewMockGateway(secret string) *MockGateway {
	return &MockGateway{secret: secret}
}

// CreateOrder returns a local order without any network call
func (m *MockGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*GatewayOrder, error) {
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	return &GatewayOrder{
		ID:       "order_mock_" + req.Receipt,
		Entity:   "order",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
		Notes:    notes,
	}, nil
}

// VerifySignature implements Gateway
func (m *MockGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(m.secret, gatewayOrderID, paymentID, signature)
}

// KeyID implements Gateway
func (m *MockGateway) KeyID() string { return "" }

// Configured implements Gateway
func (m *MockGateway) Configured() bool { return false }
