// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// PaymentProvider identifies who collects the money
type PaymentProvider string

const (
	PaymentProviderRazorpay PaymentProvider = "razorpay"
	PaymentProviderCOD      PaymentProvider = "cod"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "created"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusPending PaymentStatus = "pending"
)

// Order represents the order entity. Only Status, Payment and the status
// timestamps change after creation.
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderNumber string          `gorm:"uniqueIndex;not null;size:50" json:"orderNumber"`
	UserID      uint            `gorm:"not null;index" json:"userId"`
	Status      OrderStatus     `gorm:"not null;size:20;default:'placed'" json:"status"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"deliveryFee"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Currency    string          `gorm:"size:3;default:'INR'" json:"currency"`

	Address  Address  `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	TimeSlot TimeSlot `gorm:"embedded;embeddedPrefix:slot_" json:"timeSlot"`
	Payment  Payment  `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	// Timestamps
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"statusHistory,omitempty"`
}

// OrderItem is a cart line copied by value at order time
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Image     string          `gorm:"size:500" json:"image"`
	Unit      pricing.Unit    `gorm:"not null;size:10" json:"unit"`
	Qty       decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

// Address is the delivery address snapshot embedded in an order
type Address struct {
	Name    string `gorm:"size:100" json:"name,omitempty"`
	Line1   string `gorm:"size:255" json:"line1"`
	Line2   string `gorm:"size:255" json:"line2,omitempty"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	Pincode string `gorm:"size:10" json:"pincode"`
	Phone   string `gorm:"size:20" json:"phone"`
}

// TimeSlot is a delivery window
type TimeSlot struct {
	Date      string `gorm:"size:10" json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `gorm:"size:5" json:"startTime" binding:"required,datetime=15:04"`
	EndTime   string `gorm:"size:5" json:"endTime" binding:"required,datetime=15:04"`
}

// Payment is the payment sub-record of an order
type Payment struct {
	Provider  PaymentProvider `gorm:"size:20;not null" json:"provider"`
	Status    PaymentStatus   `gorm:"size:20;not null" json:"status"`
	OrderID   string          `gorm:"size:100;index" json:"orderId"`
	PaymentID string          `gorm:"size:100" json:"paymentId,omitempty"`
	Signature string          `gorm:"size:255" json:"signature,omitempty"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"-"`
	OrderID   uint        `gorm:"not null;index" json:"-"`
	Status    OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment,omitempty"`
	CreatedBy uint        `gorm:"index" json:"createdBy,omitempty"` // 0 for system changes
	CreatedAt time.Time   `json:"createdAt"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to OrderStatus) bool {
	for _, status := range transitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// GenerateOrderNumber generates a unique order number.
// Format: ORD-YYYYMMDD-XXXXXXXX
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// ItemsFromCart copies cart lines into order lines
func ItemsFromCart(lines []cart.CartItem) []OrderItem {
	items := make([]OrderItem, len(lines))
	for i, line := range lines {
		items[i] = OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Unit:      line.Unit,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			Price:     line.Price,
		}
	}
	return items
}

// SetStatus moves the order to status and records the change
func (o *Order) SetStatus(status OrderStatus, comment string, createdBy uint, now time.Time) OrderStatusHistory {
	o.Status = status
	switch status {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
	}

	history := OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	o.StatusHistory = append(o.StatusHistory, history)
	return history
}

// IsPaid reports whether the gateway confirmed payment
func (o *Order) IsPaid() bool {
	return o.Payment.Status == PaymentStatusPaid
}

// AmountInMinorUnits returns the total in paise
func (o *Order) AmountInMinorUnits() int64 {
	return pricing.ToMinorUnits(o.Total)
}
