// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/database"
	"github.com/innovatech/storefront-backend/internal/identity"
	"github.com/innovatech/storefront-backend/internal/models"
	"github.com/innovatech/storefront-backend/internal/utils"
)

// CheckoutService converts a registered customer's cart into an immutable
// Purchase. The conversion runs inside a retrying transaction: every attempt
// re-reads the cart and re-prices every line against a fresh handle, so a
// replay after a serialization failure can never act on stale state.
type CheckoutService struct {
	db            *gorm.DB
	coupons       *CouponService
	notifications *NotificationService
	taxRate       decimal.Decimal
	retry         database.RetryConfig
}

func NewCheckoutService(db *gorm.DB, coupons *CouponService, notifications *NotificationService, taxRate decimal.Decimal, retry database.RetryConfig) *CheckoutService {
	return &CheckoutService{
		db:            db,
		coupons:       coupons,
		notifications: notifications,
		taxRate:       taxRate,
		retry:         retry,
	}
}

// CreatePurchaseFromCart performs checkout for a registered customer:
//
//  1. Load the cart and reject when empty.
//  2. Price every line at its current effective price, all against one
//     shared timestamp, and total up subtotal, tax and grand total.
//  3. Create the Purchase and its frozen line items, decrement stock with
//     an atomic clamp at zero, and delete the cart.
//  4. After commit, fold the identity's applied coupon into the purchase
//     as a bounded second update and clear the applied coupon.
//
// Steps 1-3 are one transactional unit replayed only on transient datastore
// failures. Step 4 runs at most once per purchase; the guard on
// discount_amount keeps a racing duplicate from discounting twice.
func (s *CheckoutService) CreatePurchaseFromCart(ctx context.Context, ident identity.Identity) (*models.Purchase, error) {
	customerID, ok := ident.CustomerID()
	if !ok {
		return nil, ErrIdentityUnresolved
	}

	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityUnresolved
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	var purchase *models.Purchase
	err := database.WithRetryingTransaction(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		purchase = nil

		var cart models.Cart
		err := tx.Preload("Items.Product.Promotion").
			Where("customer_id = ?", customerID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		// One timestamp prices every line. A promotion window ending
		// mid-checkout cannot split the cart into two pricing regimes.
		now := time.Now().UTC()

		subtotal := decimal.Zero
		lines := make([]models.PurchaseLineItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			if item.Product.ID == uuid.Nil {
				return ErrProductNotFound
			}
			unit := item.Product.EffectivePrice(now)
			lineSubtotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)
			lines = append(lines, models.PurchaseLineItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: unit,
				Subtotal:  lineSubtotal,
			})
		}

		tax := subtotal.Mul(s.taxRate).Round(2)
		total := subtotal.Add(tax)

		p := models.Purchase{
			CustomerID:     customerID,
			EmployeeID:     s.assignEmployee(tx),
			PurchasedAt:    now,
			Subtotal:       subtotal,
			Tax:            tax,
			DiscountAmount: decimal.Zero,
			Total:          total,
			Paid:           true,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		for i := range lines {
			lines[i].PurchaseID = p.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return fmt.Errorf("failed to create purchase line: %w", err)
			}

			// Single-statement decrement clamped at zero. Stock is never
			// read back into the application before writing.
			err := tx.Model(&models.Product{}).
				Where("id = ?", lines[i].ProductID).
				UpdateColumn("stock", gorm.Expr(
					"CASE WHEN stock >= ? THEN stock - ? ELSE 0 END",
					lines[i].Quantity, lines[i].Quantity,
				)).Error
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}

		// Hard delete so the customer's next cart does not collide with
		// the unique owner index.
		if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart lines: %w", err)
		}
		if err := tx.Unscoped().Delete(&cart).Error; err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}

		p.Items = lines
		purchase = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.applyCouponDiscount(ctx, ident, purchase); err != nil {
		// The purchase stands; the discount write is best-effort and its
		// failure must not look like a failed checkout.
		logrus.WithError(err).WithField("purchase_id", purchase.ID).
			Error("Failed to apply coupon discount to purchase")
	}

	if s.notifications != nil {
		go s.notifications.SendInvoiceEmail(purchase, &customer)
	}

	return purchase, nil
}

// GetPurchase loads a purchase with its lines and products.
func (s *CheckoutService) GetPurchase(purchaseID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.Preload("Items.Product").Preload("Customer").
		First(&purchase, "id = ?", purchaseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	return &purchase, nil
}

// ListAllPurchases returns a paginated view of every purchase, for the
// admin back office.
func (s *CheckoutService) ListAllPurchases(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Purchase{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	var purchases []models.Purchase
	query = s.db.Preload("Customer").Preload("Items")
	query = utils.ApplySort(query, params, []string{"purchased_at", "total", "created_at"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	result := utils.CreatePaginationResult(purchases, total, params)
	return &result, nil
}

// ListPurchases returns a customer's purchase history, newest first.
func (s *CheckoutService) ListPurchases(customerID uuid.UUID) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.Preload("Items.Product").
		Where("customer_id = ?", customerID).
		Order("purchased_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

// applyCouponDiscount folds the identity's applied coupon into an already
// committed purchase. The discount comes off the grand total only; subtotal
// and tax stay as recorded. The WHERE guard on discount_amount = 0 makes the
// update one-shot, and the applied coupon row is consumed either way.
func (s *CheckoutService) applyCouponDiscount(ctx context.Context, ident identity.Identity, purchase *models.Purchase) error {
	if s.coupons == nil {
		return nil
	}

	applied, err := s.coupons.Current(ident, purchase.PurchasedAt)
	if err != nil {
		return err
	}
	if applied == nil {
		return nil
	}

	discount := purchase.Subtotal.
		Mul(decimal.NewFromInt(int64(applied.DiscountPercent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
	if discount.GreaterThan(purchase.Total) {
		discount = purchase.Total
	}
	newTotal := purchase.Total.Sub(discount)
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}

	err = database.WithRetryingTransaction(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		result := tx.Model(&models.Purchase{}).
			Where("id = ? AND discount_amount = 0", purchase.ID).
			Updates(map[string]interface{}{
				"discount_amount": discount,
				"coupon_code":     applied.Code,
				"total":           newTotal,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to write discount: %w", result.Error)
		}
		return s.coupons.identityScope(tx, ident).Unscoped().Delete(&models.AppliedCoupon{}).Error
	})
	if err != nil {
		return err
	}

	code := applied.Code
	purchase.DiscountAmount = discount
	purchase.CouponCode = &code
	purchase.Total = newTotal
	return nil
}

// assignEmployee picks the first employee on record as the handling clerk.
// No employee on file leaves the purchase unassigned.
func (s *CheckoutService) assignEmployee(tx *gorm.DB) *uuid.UUID {
	var employee models.Employee
	if err := tx.Select("id").Order("created_at ASC").First(&employee).Error; err != nil {
		return nil
	}
	return &employee.ID
}
