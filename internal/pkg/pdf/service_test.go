package pdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
)

func TestRenderInvoiceHTML(t *testing.T) {
	cfg := &config.Config{}
	cfg.Company.Name = "VeggieFresh"
	cfg.Company.Email = "care@veggiefresh.in"
	svc := NewService(cfg)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }

	o := &order.Order{
		OrderNumber: "ORD-20260314-ABCDEF12",
		Status:      order.OrderStatusConfirmed,
		Subtotal:    decimal.NewFromInt(250),
		DeliveryFee: decimal.Zero,
		Total:       decimal.NewFromInt(250),
		Currency:    "INR",
		Address:     order.Address{Name: "Asha", Line1: "4 Park St", City: "Kolkata", State: "WB", Pincode: "700016"},
		TimeSlot:    order.TimeSlot{Date: "2026-03-15", StartTime: "08:00", EndTime: "10:00"},
		Payment:     order.Payment{Provider: order.PaymentProviderRazorpay, Status: order.PaymentStatusPaid},
		Items: []order.OrderItem{
			{Name: "Fresh Tomatoes", Unit: "kg", Qty: decimal.RequireFromString("2.5"), UnitPrice: decimal.NewFromInt(40), Price: decimal.NewFromInt(100)},
		},
	}

	html, err := svc.RenderInvoiceHTML(o)
	require.NoError(t, err)

	assert.Contains(t, html, "INV-ORD-20260314-ABCDEF12")
	assert.Contains(t, html, "March 14, 2026")
	assert.Contains(t, html, "Fresh Tomatoes")
	assert.Contains(t, html, "2.5")
	assert.Contains(t, html, "₹100.00")
	assert.Contains(t, html, "₹250.00")
	assert.Contains(t, html, "FREE")
	assert.Contains(t, html, "status-paid")
	assert.Contains(t, html, "08:00 - 10:00")
	assert.Contains(t, html, "razorpay: paid")
	assert.Contains(t, html, "Total (INR)")
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "₹", currencySymbol("INR"))
	assert.Equal(t, "$", currencySymbol("USD"))
	assert.Equal(t, "EUR ", currencySymbol("EUR"))
}
