// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
)

// Cart is the single shopping cart of a user
type Cart struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"userId"`
	Items     []CartItem      `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CartItem is one priced line, unique per (ProductID, Unit) within a cart
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	CartID    uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null" json:"productId"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Image     string          `gorm:"size:500" json:"image"`
	Unit      pricing.Unit    `gorm:"not null;size:10" json:"unit"`
	Qty       decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

// TableName overrides the table name for Cart
func (Cart) TableName() string {
	return "carts"
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCart returns an empty cart for a user
func NewCart(userID uint) *Cart {
	return &Cart{
		UserID:   userID,
		Items:    []CartItem{},
		Subtotal: decimal.Zero,
	}
}

// Recalculate restores subtotal == sum of line prices. Every mutation calls it
// before the cart is persisted.
func (c *Cart) Recalculate() {
	lines := make([]decimal.Decimal, len(c.Items))
	for i, item := range c.Items {
		lines[i] = item.Price
	}
	c.Subtotal = pricing.Subtotal(lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindLine returns the index of the (productID, unit) line, or -1
func (c *Cart) FindLine(productID uint, unit pricing.Unit) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.Unit == unit {
			return i
		}
	}
	return -1
}

// FindFirstByProduct returns the index of the first line for productID, or -1.
// When a product is in the cart under several units the earliest line wins.
func (c *Cart) FindFirstByProduct(productID uint) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveProduct drops every line of productID
func (c *Cart) RemoveProduct(productID uint) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.Recalculate()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Subtotal = decimal.Zero
}

// Snapshot copies the lines by value
func (c *Cart) Snapshot() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}
