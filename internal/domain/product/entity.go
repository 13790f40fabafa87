// internal/domain/product/entity.go
package product

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
	"gorm.io/gorm"
)

// Product represents a catalog item sold in one or more units
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	CategoryID  uint           `gorm:"not null;index" json:"categoryId"`
	Rating      *float64       `json:"rating,omitempty"`
	IsActive    bool           `gorm:"default:true;index" json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category   *Category      `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
	Images     []ProductImage `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`
	UnitPrices []UnitPrice    `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"unitPrices"`
}

// UnitPrice is one sellable unit offering of a product
type UnitPrice struct {
	ID        uint             `gorm:"primaryKey" json:"-"`
	ProductID uint             `gorm:"not null;uniqueIndex:idx_product_unit" json:"-"`
	Unit      pricing.Unit     `gorm:"not null;size:10;uniqueIndex:idx_product_unit" json:"unit"`
	Step      decimal.Decimal  `gorm:"type:numeric(12,3);not null" json:"step"`
	BaseQty   decimal.Decimal  `gorm:"type:numeric(12,3);not null" json:"baseQty"`
	Price     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	CompareAt *decimal.Decimal `gorm:"type:numeric(12,2)" json:"compareAt,omitempty"`
	Stock     decimal.Decimal  `gorm:"type:numeric(12,3);not null;default:0" json:"stock"`
}

// ProductImage is an ordered product picture
type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ProductID uint   `gorm:"not null;index" json:"-"`
	URL       string `gorm:"not null;size:500" json:"url"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}

// Category groups products on the storefront
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	IconURL   string         `gorm:"size:500" json:"iconUrl"`
	Sort      int            `gorm:"default:0" json:"sort"`
	IsActive  bool           `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// TableName overrides the table name for UnitPrice
func (UnitPrice) TableName() string {
	return "product_unit_prices"
}

// TableName overrides the table name for ProductImage
func (ProductImage) TableName() string {
	return "product_images"
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// PriceTable returns the product's offerings in pricing form
func (p *Product) PriceTable() []pricing.UnitPrice {
	table := make([]pricing.UnitPrice, len(p.UnitPrices))
	for i, up := range p.UnitPrices {
		table[i] = pricing.UnitPrice{
			Unit:    up.Unit,
			BaseQty: up.BaseQty,
			Price:   up.Price,
			Stock:   up.Stock,
		}
	}
	return table
}

// FindUnitPrice returns the offering for unit
func (p *Product) FindUnitPrice(unit pricing.Unit) (*UnitPrice, bool) {
	for i := range p.UnitPrices {
		if p.UnitPrices[i].Unit == unit {
			return &p.UnitPrices[i], true
		}
	}
	return nil, false
}

// PrimaryImage returns the first image URL by sort order, or ""
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	best := p.Images[0]
	for _, img := range p.Images[1:] {
		if img.SortOrder < best.SortOrder {
			best = img
		}
	}
	return best.URL
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a name
func Slugify(name string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
