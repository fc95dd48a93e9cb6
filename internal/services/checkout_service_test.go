// internal/services/checkout_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/database"
	"github.com/innovatech/storefront-backend/internal/identity"
	"github.com/innovatech/storefront-backend/internal/models"
)

func newCheckout(db *gorm.DB) *CheckoutService {
	return NewCheckoutService(
		db,
		NewCouponService(db),
		nil,
		decimal.RequireFromString("0.13"),
		database.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond},
	)
}

func TestCheckoutHappyPath(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	checkout := newCheckout(db)

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "SSD 1TB", "50.00", 10)
	registered := identity.Registered(customer.ID)

	_, err := carts.AddItem(registered, product.ID, 2)
	require.NoError(t, err)

	purchase, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)

	assert.Equal(t, customer.ID, purchase.CustomerID)
	assert.True(t, purchase.Paid)
	assert.False(t, purchase.PurchasedAt.IsZero())
	assert.True(t, decimal.RequireFromString("100.00").Equal(purchase.Subtotal), "subtotal %s", purchase.Subtotal)
	assert.True(t, decimal.RequireFromString("13.00").Equal(purchase.Tax), "tax %s", purchase.Tax)
	assert.True(t, decimal.RequireFromString("113.00").Equal(purchase.Total), "total %s", purchase.Total)
	assert.True(t, purchase.DiscountAmount.IsZero())
	assert.Nil(t, purchase.CouponCode)

	require.Len(t, purchase.Items, 1)
	line := purchase.Items[0]
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, decimal.RequireFromString("50.00").Equal(line.UnitPrice))
	assert.True(t, decimal.RequireFromString("100.00").Equal(line.Subtotal))

	// Stock decremented, cart destroyed.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 8, reloaded.Stock)

	cart, err := carts.GetCart(registered)
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestCheckoutUsesPromotionalPrice(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	checkout := newCheckout(db)

	customer := seedCustomer(t, db, "promo@example.com")
	promo := seedPromotion(t, db, "20",
		time.Now().UTC().Add(-time.Hour), time.Now().UTC().Add(time.Hour))
	product := seedProduct(t, db, "GPU", "100.00", 4)
	require.NoError(t, db.Model(product).Update("promotion_id", promo.ID).Error)

	registered := identity.Registered(customer.ID)
	_, err := carts.AddItem(registered, product.ID, 1)
	require.NoError(t, err)

	purchase, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)

	require.Len(t, purchase.Items, 1)
	assert.True(t, decimal.RequireFromString("80.00").Equal(purchase.Items[0].UnitPrice),
		"unit price %s", purchase.Items[0].UnitPrice)
	assert.True(t, decimal.RequireFromString("80.00").Equal(purchase.Subtotal))
}

func TestCheckoutStockClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	checkout := newCheckout(db)

	customer := seedCustomer(t, db, "oversell@example.com")
	product := seedProduct(t, db, "Limited Edition", "10.00", 3)
	registered := identity.Registered(customer.ID)

	// Oversell: the purchase succeeds and stock floors at zero.
	_, err := carts.AddItem(registered, product.ID, 5)
	require.NoError(t, err)

	_, err = checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 0, reloaded.Stock)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	checkout := newCheckout(db)
	customer := seedCustomer(t, db, "empty@example.com")

	_, err := checkout.CreatePurchaseFromCart(context.Background(), identity.Registered(customer.ID))
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutRequiresRegisteredIdentity(t *testing.T) {
	db := newTestDB(t)
	checkout := newCheckout(db)

	_, err := checkout.CreatePurchaseFromCart(context.Background(), identity.Anonymous(uuid.New().String()))
	assert.ErrorIs(t, err, ErrIdentityUnresolved)

	// A registered identity whose customer row is gone is just as invalid.
	_, err = checkout.CreatePurchaseFromCart(context.Background(), identity.Registered(uuid.New()))
	assert.ErrorIs(t, err, ErrIdentityUnresolved)
}

func TestCheckoutAppliesCoupon(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	coupons := NewCouponService(db)
	checkout := NewCheckoutService(db, coupons, nil,
		decimal.RequireFromString("0.13"),
		database.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond})

	customer := seedCustomer(t, db, "coupon@example.com")
	product := seedProduct(t, db, "Keyboard", "50.00", 10)
	seedCoupon(t, db, "SAVE10", 10,
		time.Now().UTC().Add(-24*time.Hour), time.Now().UTC().Add(24*time.Hour))

	registered := identity.Registered(customer.ID)
	_, err := carts.AddItem(registered, product.ID, 1)
	require.NoError(t, err)
	_, err = coupons.Apply(registered, "SAVE10", time.Now().UTC())
	require.NoError(t, err)

	purchase, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)

	// Discount is 10% of the subtotal and comes off the total only.
	assert.True(t, decimal.RequireFromString("50.00").Equal(purchase.Subtotal))
	assert.True(t, decimal.RequireFromString("6.50").Equal(purchase.Tax))
	assert.True(t, decimal.RequireFromString("5.00").Equal(purchase.DiscountAmount),
		"discount %s", purchase.DiscountAmount)
	assert.True(t, decimal.RequireFromString("51.50").Equal(purchase.Total),
		"total %s", purchase.Total)
	require.NotNil(t, purchase.CouponCode)
	assert.Equal(t, "SAVE10", *purchase.CouponCode)

	// The persisted row matches the returned value.
	var stored models.Purchase
	require.NoError(t, db.First(&stored, "id = ?", purchase.ID).Error)
	assert.True(t, purchase.Total.Equal(stored.Total))
	assert.True(t, purchase.DiscountAmount.Equal(stored.DiscountAmount))

	// The applied coupon is consumed.
	current, err := coupons.Current(registered, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, current)

	// The next purchase carries no discount.
	_, err = carts.AddItem(registered, product.ID, 1)
	require.NoError(t, err)
	second, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)
	assert.True(t, second.DiscountAmount.IsZero())
	assert.Nil(t, second.CouponCode)
}

func TestCheckoutAppliesCouponMergedOnLogin(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	coupons := NewCouponService(db)
	checkout := NewCheckoutService(db, coupons, nil,
		decimal.RequireFromString("0.13"),
		database.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond})

	customer := seedCustomer(t, db, "guest-then-login@example.com")
	product := seedProduct(t, db, "Monitor", "100.00", 5)
	seedCoupon(t, db, "WELCOME5", 5,
		time.Now().UTC().Add(-24*time.Hour), time.Now().UTC().Add(24*time.Hour))

	// Cart filled and coupon applied while signed out.
	token := uuid.New().String()
	guest := identity.Anonymous(token)
	_, err := carts.AddItem(guest, product.ID, 1)
	require.NoError(t, err)
	_, err = coupons.Apply(guest, "WELCOME5", time.Now().UTC())
	require.NoError(t, err)

	// Sign in: guest state is re-homed, then the customer pays.
	require.NoError(t, carts.MergeAnonymousCart(customer.ID, token))
	require.NoError(t, coupons.MergeAnonymousCoupon(customer.ID, token))

	registered := identity.Registered(customer.ID)
	purchase, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("5.00").Equal(purchase.DiscountAmount),
		"discount %s", purchase.DiscountAmount)
	assert.True(t, decimal.RequireFromString("108.00").Equal(purchase.Total),
		"total %s", purchase.Total)
	require.NotNil(t, purchase.CouponCode)
	assert.Equal(t, "WELCOME5", *purchase.CouponCode)

	// Consumed everywhere: neither identity still carries the coupon.
	current, err := coupons.Current(registered, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, current)
	current, err = coupons.Current(guest, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCheckoutRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	checkout := newCheckout(db)

	customer := seedCustomer(t, db, "rollback@example.com")
	product := seedProduct(t, db, "Webcam", "40.00", 7)
	registered := identity.Registered(customer.ID)

	_, err := carts.AddItem(registered, product.ID, 2)
	require.NoError(t, err)

	// Sabotage the line-item insert so the transaction fails after the
	// purchase row has already been written.
	require.NoError(t, db.Migrator().DropTable(&models.PurchaseLineItem{}))

	_, err = checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.Error(t, err)

	// Nothing committed: no purchase, stock untouched, cart still intact.
	var purchases int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&purchases).Error)
	assert.EqualValues(t, 0, purchases)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 7, reloaded.Stock)

	cart, err := carts.GetCart(registered)
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// The failure is recoverable: restore the schema and the same cart
	// checks out cleanly.
	require.NoError(t, db.AutoMigrate(&models.PurchaseLineItem{}))

	purchase, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("80.00").Equal(purchase.Subtotal))

	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 5, reloaded.Stock)
}

func TestCheckoutMonetaryConservation(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	checkout := newCheckout(db)

	customer := seedCustomer(t, db, "sums@example.com")
	a := seedProduct(t, db, "Cable", "7.35", 20)
	b := seedProduct(t, db, "Adapter", "12.80", 20)
	registered := identity.Registered(customer.ID)

	_, err := carts.AddItem(registered, a.ID, 3)
	require.NoError(t, err)
	_, err = carts.AddItem(registered, b.ID, 2)
	require.NoError(t, err)

	purchase, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)

	lineSum := decimal.Zero
	for _, item := range purchase.Items {
		assert.True(t, item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Equal(item.Subtotal))
		lineSum = lineSum.Add(item.Subtotal)
	}
	assert.True(t, lineSum.Equal(purchase.Subtotal))
	assert.True(t, purchase.Subtotal.Add(purchase.Tax).Sub(purchase.DiscountAmount).Equal(purchase.Total))
}

func TestCheckoutAssignsFirstEmployee(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	checkout := newCheckout(db)

	employee := &models.Employee{FullName: "Store Clerk", Email: "clerk@innovatech.store"}
	require.NoError(t, db.Create(employee).Error)

	customer := seedCustomer(t, db, "clerked@example.com")
	product := seedProduct(t, db, "Charger", "29.00", 5)
	registered := identity.Registered(customer.ID)

	_, err := carts.AddItem(registered, product.ID, 1)
	require.NoError(t, err)

	purchase, err := checkout.CreatePurchaseFromCart(context.Background(), registered)
	require.NoError(t, err)
	require.NotNil(t, purchase.EmployeeID)
	assert.Equal(t, employee.ID, *purchase.EmployeeID)
}

func TestCheckoutHistory(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	checkout := newCheckout(db)

	customer := seedCustomer(t, db, "history@example.com")
	product := seedProduct(t, db, "Dock", "75.00", 10)
	registered := identity.Registered(customer.ID)

	for i := 0; i < 2; i++ {
		_, err := carts.AddItem(registered, product.ID, 1)
		require.NoError(t, err)
		_, err = checkout.CreatePurchaseFromCart(context.Background(), registered)
		require.NoError(t, err)
	}

	purchases, err := checkout.ListPurchases(customer.ID)
	require.NoError(t, err)
	assert.Len(t, purchases, 2)

	loaded, err := checkout.GetPurchase(purchases[0].ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, loaded.CustomerID)

	_, err = checkout.GetPurchase(uuid.New())
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}
