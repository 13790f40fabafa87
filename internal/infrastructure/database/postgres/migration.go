// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
	"github.com/veggiefresh/grocery-backend/internal/domain/product"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("running database auto-migrations")

	// Models in dependency order
	models := []interface{}{
		// User domain
		&user.User{},
		&user.Address{},
		&user.OTP{},

		// Catalog
		&product.Category{},
		&product.Product{},
		&product.UnitPrice{},
		&product.ProductImage{},

		// Cart
		&cart.Cart{},
		&cart.CartItem{},

		// Orders
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		m.log.Debugf("migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the hot queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort ON categories(sort, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_images_sort ON product_images(product_id, sort_order)",

		// Cart lines are unique per (product, unit)
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_line ON cart_items(cart_id, product_id, unit)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_product_unit ON cart_items(product_id, unit)",

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_order ON orders(payment_order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",

		// Addresses
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// OTP lookups
		"CREATE INDEX IF NOT EXISTS idx_otps_phone_used ON otps(phone, is_used)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes ensured")
	return nil
}

// SeedInitialData inserts the development catalog and accounts
func (m *Migration) SeedInitialData() error {
	categories, err := m.seedCategories()
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedProducts(categories); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	m.log.Info("initial data seeded")
	return nil
}

func (m *Migration) seedCategories() (map[string]uint, error) {
	categories := []product.Category{
		{Name: "Fruits", Slug: "fruits", IconURL: "https://images.unsplash.com/photo-1610832958506-aa56368176cf?w=100", Sort: 1, IsActive: true},
		{Name: "Vegetables", Slug: "vegetables", IconURL: "https://images.unsplash.com/photo-1540420773420-3366772f4999?w=100", Sort: 2, IsActive: true},
		{Name: "Dairy", Slug: "dairy", IconURL: "https://images.unsplash.com/photo-1550583724-b2692b85b150?w=100", Sort: 3, IsActive: true},
		{Name: "Herbs & Spices", Slug: "herbs-spices", IconURL: "https://images.unsplash.com/photo-1596040033229-a9821ebd058d?w=100", Sort: 4, IsActive: true},
		{Name: "Organic", Slug: "organic", IconURL: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=100", Sort: 5, IsActive: true},
	}

	ids := make(map[string]uint, len(categories))
	for _, category := range categories {
		var existing product.Category
		err := m.db.Where("slug = ?", category.Slug).First(&existing).Error
		if err == nil {
			ids[category.Slug] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if err := m.db.Create(&category).Error; err != nil {
			return nil, err
		}
		ids[category.Slug] = category.ID
		m.log.WithField("category", category.Name).Info("created category")
	}

	return ids, nil
}

type seedUnit struct {
	unit    pricing.Unit
	step    string
	baseQty string
	price   string
	stock   string
}

type seedProduct struct {
	name        string
	category    string
	image       string
	description string
	rating      float64
	units       []seedUnit
}

func (m *Migration) seedProducts(categories map[string]uint) error {
	catalog := []seedProduct{
		{"Fresh Tomatoes", "vegetables", "https://images.unsplash.com/photo-1546470427-4b4b4b4b4b4b?w=400",
			"Fresh, juicy tomatoes perfect for salads and cooking", 4.5,
			[]seedUnit{{pricing.UnitKg, "0.25", "1", "40", "50"}, {pricing.UnitGram, "250", "1000", "40", "50000"}}},
		{"Organic Bananas", "fruits", "https://images.unsplash.com/photo-1571771894821-ce9b6c11b08e?w=400",
			"Sweet, organic bananas rich in potassium", 4.3,
			[]seedUnit{{pricing.UnitKg, "0.5", "1", "60", "30"}, {pricing.UnitPieces, "1", "1", "3", "200"}}},
		{"Fresh Carrots", "vegetables", "https://images.unsplash.com/photo-1598170845058-87b9d4c0358a?w=400",
			"Crisp, fresh carrots perfect for snacking", 4.2,
			[]seedUnit{{pricing.UnitKg, "0.25", "1", "35", "40"}, {pricing.UnitGram, "500", "1000", "35", "40000"}}},
		{"Fresh Milk", "dairy", "https://images.unsplash.com/photo-1550583724-b2692b85b150?w=400",
			"Fresh, pure milk from local farms", 4.4,
			[]seedUnit{{pricing.UnitPieces, "1", "1", "25", "100"}}},
		{"Fresh Onions", "vegetables", "https://images.unsplash.com/photo-1518977956812-cd3dbadaaf31?w=400",
			"Fresh onions perfect for cooking", 4.1,
			[]seedUnit{{pricing.UnitKg, "0.5", "1", "30", "60"}, {pricing.UnitGram, "500", "1000", "30", "60000"}}},
		{"Fresh Potatoes", "vegetables", "https://images.unsplash.com/photo-1518977676601-b53f82aba655?w=400",
			"Fresh potatoes perfect for various dishes", 4.0,
			[]seedUnit{{pricing.UnitKg, "0.5", "1", "25", "80"}, {pricing.UnitGram, "500", "1000", "25", "80000"}}},
		{"Fresh Spinach", "vegetables", "https://images.unsplash.com/photo-1576045057995-568f588f82fb?w=400",
			"Fresh, leafy spinach rich in iron", 4.6,
			[]seedUnit{{pricing.UnitKg, "0.25", "1", "50", "20"}, {pricing.UnitGram, "250", "1000", "50", "20000"}, {pricing.UnitBundle, "1", "1", "15", "40"}}},
		{"Fresh Apples", "fruits", "https://images.unsplash.com/photo-1560806887-1e4cd0b6cbd6?w=400",
			"Crisp, sweet apples perfect for snacking", 4.4,
			[]seedUnit{{pricing.UnitKg, "0.5", "1", "80", "25"}, {pricing.UnitPieces, "1", "1", "8", "150"}}},
	}

	for _, item := range catalog {
		slug := product.Slugify(item.name)

		var count int64
		if err := m.db.Model(&product.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		rating := item.rating
		p := product.Product{
			Name:        item.name,
			Slug:        slug,
			Description: item.description,
			CategoryID:  categories[item.category],
			Rating:      &rating,
			IsActive:    true,
			Images:      []product.ProductImage{{URL: item.image}},
		}
		for _, u := range item.units {
			p.UnitPrices = append(p.UnitPrices, product.UnitPrice{
				Unit:    u.unit,
				Step:    decimal.RequireFromString(u.step),
				BaseQty: decimal.RequireFromString(u.baseQty),
				Price:   decimal.RequireFromString(u.price),
				Stock:   decimal.RequireFromString(u.stock),
			})
		}

		if err := m.db.Create(&p).Error; err != nil {
			m.log.WithError(err).WithField("product", item.name).Warn("failed to create product")
			continue
		}
		m.log.WithField("product", item.name).Info("created product")
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	const email = "admin@veggiefresh.in"

	var count int64
	if err := m.db.Model(&user.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := user.User{
		Name:         "Admin",
		Email:        ptr(email),
		PasswordHash: string(hashedPassword),
		Role:         user.RoleAdmin,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	m.log.WithField("email", email).Info("created admin user (password: admin123)")
	return nil
}

// DropAllTables drops every table (use with extreme caution)
func (m *Migration) DropAllTables() error {
	m.log.Warn("dropping all database tables")

	// Reverse dependency order
	tables := []string{
		"order_status_history",
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"product_images",
		"product_unit_prices",
		"products",
		"categories",
		"otps",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			m.log.WithError(err).WithField("table", table).Warn("failed to drop table")
		}
	}
	return nil
}

// GetTableInfo logs the row count of each table
func (m *Migration) GetTableInfo() error {
	var tables []string
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		m.log.WithFields(logrus.Fields{"table": table, "rows": count}).Debug("table info")
	}
	return nil
}

func ptr(s string) *string {
	return &s
}
