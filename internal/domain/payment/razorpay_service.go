// internal/domain/payment/razorpay_service.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

// RazorpayService talks to the Razorpay REST API
type RazorpayService struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewRazorpayService creates a new Razorpay client
func NewRazorpayService(cfg *config.Config, log logrus.FieldLogger) *RazorpayService {
	return &RazorpayService{
		keyID:     cfg.External.Razorpay.KeyID,
		keySecret: cfg.External.Razorpay.KeySecret,
		baseURL:   strings.TrimRight(cfg.External.Razorpay.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.External.Razorpay.Timeout,
		},
		log: log,
	}
}

// NewGateway returns the Razorpay client when credentials are configured and the
// mock gateway otherwise
func NewGateway(cfg *config.Config, log logrus.FieldLogger) Gateway {
	if cfg.RazorpayConfigured() {
		return NewRazorpayService(cfg, log)
	}
	log.Warn("Razorpay credentials not configured, using mock payment gateway")
	return NewMockGateway(cfg.External.Razorpay.KeySecret)
}

// razorpayError is the error envelope returned by the API
type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates order in Razorpay. A single attempt is made.
func (r *RazorpayService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*GatewayOrder, error) {
	response, err := r.makeAPICall(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return nil, err
	}

	var razorpayOrder GatewayOrder
	if err := json.Unmarshal(response, &razorpayOrder); err != nil {
		return nil, apperror.Gateway("failed to parse Razorpay order response", err)
	}
	if razorpayOrder.ID == "" {
		return nil, apperror.Gateway("Razorpay returned an order without id", nil)
	}

	r.log.WithFields(logrus.Fields{
		"razorpay_order_id": razorpayOrder.ID,
		"receipt":           req.Receipt,
		"amount":            req.Amount,
	}).Info("razorpay order created")

	return &razorpayOrder, nil
}

// VerifySignature implements Gateway
func (r *RazorpayService) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(r.keySecret, gatewayOrderID, paymentID, signature)
}

// KeyID implements Gateway
func (r *RazorpayService) KeyID() string { return r.keyID }

// Configured implements Gateway
func (r *RazorpayService) Configured() bool { return true }

// makeAPICall makes HTTP calls to Razorpay API
func (r *RazorpayService) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var body io.Reader
	if data != nil {
		reqBody, err := json.Marshal(data)
		if err != nil {
			return nil, apperror.Internal("failed to marshal request data", err)
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+endpoint, body)
	if err != nil {
		return nil, apperror.Internal("failed to create request", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Gateway("payment gateway unavailable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperror.Gateway("failed to read payment gateway response", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr razorpayError
		description := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Description != "" {
			description = apiErr.Error.Code + ": " + apiErr.Error.Description
		}
		return nil, apperror.Gateway("payment gateway rejected the request",
			fmt.Errorf("razorpay %s %s returned %d: %s", method, endpoint, resp.StatusCode, description))
	}

	return respBody, nil
}
