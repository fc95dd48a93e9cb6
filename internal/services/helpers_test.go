// internal/services/helpers_test.go
package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glebarez/sqlite"

	"github.com/innovatech/storefront-backend/internal/models"
)

// newTestDB opens a per-test in-memory database with the full schema. The
// shared-cache DSN keyed by test name keeps pooled connections on the same
// database while isolating tests from each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
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
	))

	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		FullName: "Test Customer",
		Email:    email,
		Role:     models.CustomerRoleCustomer,
		Status:   models.CustomerStatusActive,
	}
	require.NoError(t, customer.SetPassword("Sup3r$ecret"))
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{Name: fmt.Sprintf("Category %s", uuid.New().String()[:8])}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Available:  true,
		CategoryID: seedCategory(t, db).ID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedPromotion(t *testing.T, db *gorm.DB, pct string, from, to time.Time) *models.Promotion {
	t.Helper()

	promotion := &models.Promotion{
		Name:            "Seasonal Sale",
		DiscountPercent: decimal.RequireFromString(pct),
		StartDate:       from,
		EndDate:         to,
		IsActive:        true,
	}
	require.NoError(t, db.Create(promotion).Error)
	return promotion
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, pct int, from, to time.Time) *models.Coupon {
	t.Helper()

	coupon := &models.Coupon{
		Code:            code,
		DiscountPercent: pct,
		ValidFrom:       from,
		ValidTo:         to,
		IsActive:        true,
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}
