// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// gen_random_uuid() lives in pgcrypto before PostgreSQL 13
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.Category{},
		&models.Collection{},
		&models.ProductAttribute{},
		&models.AttributeValue{},
		&models.Product{},
		&models.ProductVariation{},
		&models.Country{},
		&models.StoreLocation{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.AdminSettings{},
		&models.AuditLog{},
		&models.AdminNotification{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_brand_status ON products(brand_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_status ON products(category_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_product_variations_product ON product_variations(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_product_variations_attributes ON product_variations USING GIN(attributes)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_carts_expires_at ON carts(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart ON cart_items(cart_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email)",
		"CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Admin indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_admin_notifications_status ON admin_notifications(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_admin_settings_category ON admin_settings(category, key)",

		// Full-text search indexes
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('english', name || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@lumenmart.com",
			Role:     models.UserRoleAdmin,
			Status:   models.UserStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	// Create default store settings
	defaultSettings := []models.AdminSettings{
		{
			Category:    "general",
			Key:         "store_name",
			Value:       models.JSONB{"value": "LumenMart"},
			DataType:    "string",
			Description: "Store name displayed to customers",
		},
		{
			Category:    "general",
			Key:         "support_email",
			Value:       models.JSONB{"value": "support@lumenmart.com"},
			DataType:    "string",
			Description: "Customer support contact address",
		},
		{
			Category:    "checkout",
			Key:         "shipping_fee",
			Value:       models.JSONB{"value": 5.0},
			DataType:    "float",
			Description: "Flat shipping fee per order",
		},
		{
			Category:    "checkout",
			Key:         "free_shipping_threshold",
			Value:       models.JSONB{"value": 100.0},
			DataType:    "float",
			Description: "Order total above which shipping is free",
		},
		{
			Category:    "inventory",
			Key:         "low_stock_threshold",
			Value:       models.JSONB{"value": 5},
			DataType:    "integer",
			Description: "Stock level that flags a product as low stock",
		},
		{
			Category:    "media",
			Key:         "max_upload_size",
			Value:       models.JSONB{"value": 10},
			DataType:    "integer",
			Description: "Maximum file size in MB for image uploads",
		},
	}

	for _, setting := range defaultSettings {
		var count int64
		db.Model(&models.AdminSettings{}).Where("category = ? AND key = ?", setting.Category, setting.Key).Count(&count)

		if count == 0 {
			if err := db.Create(&setting).Error; err != nil {
				log.Printf("Warning: Failed to create setting %s.%s: %v", setting.Category, setting.Key, err)
			}
		}
	}

	if err := seedCountries(db); err != nil {
		return err
	}

	if err := seedAttributes(db); err != nil {
		return err
	}

	log.Println("Initial data seeding completed")
	return nil
}

func seedCountries(db *gorm.DB) error {
	var count int64
	db.Model(&models.Country{}).Count(&count)
	if count > 0 {
		return nil
	}

	countries := []models.Country{
		{Name: "United States", Code: "US", Enabled: true},
		{Name: "Canada", Code: "CA", Enabled: true},
		{Name: "United Kingdom", Code: "GB", Enabled: true},
		{Name: "Germany", Code: "DE", Enabled: true},
		{Name: "France", Code: "FR", Enabled: true},
		{Name: "Spain", Code: "ES", Enabled: true},
		{Name: "Italy", Code: "IT", Enabled: true},
		{Name: "Netherlands", Code: "NL", Enabled: true},
		{Name: "Belgium", Code: "BE", Enabled: true},
		{Name: "Austria", Code: "AT", Enabled: true},
		{Name: "Switzerland", Code: "CH", Enabled: true},
		{Name: "Sweden", Code: "SE", Enabled: true},
		{Name: "Norway", Code: "NO", Enabled: true},
		{Name: "Denmark", Code: "DK", Enabled: true},
		{Name: "Ireland", Code: "IE", Enabled: true},
		{Name: "Portugal", Code: "PT", Enabled: true},
		{Name: "Poland", Code: "PL", Enabled: true},
		{Name: "Australia", Code: "AU", Enabled: true},
		{Name: "New Zealand", Code: "NZ", Enabled: true},
		{Name: "Japan", Code: "JP", Enabled: true},
	}

	if err := db.Create(&countries).Error; err != nil {
		return fmt.Errorf("failed to seed countries: %w", err)
	}

	log.Printf("Seeded %d countries", len(countries))
	return nil
}

// seedAttributes creates a starter attribute dictionary so a fresh install can
// define variations immediately.
func seedAttributes(db *gorm.DB) error {
	var count int64
	db.Model(&models.ProductAttribute{}).Count(&count)
	if count > 0 {
		return nil
	}

	attributes := []struct {
		name   string
		slug   string
		values []string
	}{
		{"Color", "color", []string{"Black", "White", "Red", "Blue", "Green"}},
		{"Size", "size", []string{"XS", "S", "M", "L", "XL"}},
	}

	for pos, def := range attributes {
		attr := models.ProductAttribute{Name: def.name, Slug: def.slug, Position: pos}
		if err := db.Create(&attr).Error; err != nil {
			return fmt.Errorf("failed to seed attribute %s: %w", def.name, err)
		}

		for vpos, value := range def.values {
			av := models.AttributeValue{
				AttributeID: attr.ID,
				Value:       value,
				Slug:        slug.Make(value),
				Position:    vpos,
			}
			if err := db.Create(&av).Error; err != nil {
				return fmt.Errorf("failed to seed attribute value %s: %w", value, err)
			}
		}
	}

	log.Printf("Seeded %d attributes", len(attributes))
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
