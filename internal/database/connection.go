// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/innovatech/storefront-backend/internal/config"
	"github.com/innovatech/storefront-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
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
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
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

	logrus.Info("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.Customer{},
		&models.Employee{},
		&models.Category{},
		&models.Promotion{},
		&models.Product{},
		&models.Coupon{},
		&models.AppliedCoupon{},
		&models.Cart{},
		&models.CartItem{},
		&models.Purchase{},
		&models.PurchaseLineItem{},
		&models.Favorite{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Customer indexes
		"CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email)",
		"CREATE INDEX IF NOT EXISTS idx_customers_role_status ON customers(role, status)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_available ON products(category_id, available)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_code_active ON coupons(code, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_validity ON coupons(valid_from, valid_to)",

		// Purchase indexes
		"CREATE INDEX IF NOT EXISTS idx_purchases_customer ON purchases(customer_id, purchased_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_line_items_purchase ON purchase_line_items(purchase_id)",

		// Full-text search index
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('english', name || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	var adminCount int64
	db.Model(&models.Customer{}).Where("role = ?", models.CustomerRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.Customer{
			FullName: "System Administrator",
			Email:    "admin@innovatech.store",
			Role:     models.CustomerRoleAdmin,
			Status:   models.CustomerStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		logrus.Info("Default admin user created successfully")
	}

	var categoryCount int64
	db.Model(&models.Category{}).Count(&categoryCount)

	if categoryCount == 0 {
		categories := []models.Category{
			{Name: "Laptops", Description: "Portable computers and ultrabooks"},
			{Name: "Smartphones", Description: "Mobile phones and accessories"},
			{Name: "Audio", Description: "Headphones, speakers and sound gear"},
			{Name: "Components", Description: "PC parts and upgrade components"},
		}

		for i := range categories {
			if err := db.Create(&categories[i]).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", categories[i].Name, err)
			}
		}

		sample := &models.Product{
			Name:        "Wireless Headset",
			Description: "Over-ear wireless headset with noise cancellation",
			Price:       decimal.NewFromFloat(99.99),
			Stock:       25,
			Available:   true,
			CategoryID:  categories[2].ID,
		}
		if err := db.Create(sample).Error; err != nil {
			return fmt.Errorf("failed to create sample product: %w", err)
		}
	}

	logrus.Info("Initial data seeding completed")
	return nil
}
