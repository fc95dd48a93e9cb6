// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/identity"
	"github.com/innovatech/storefront-backend/internal/models"
)

// CartService holds the mutable pre-purchase line items for one identity.
// Every mutation persists immediately; there are no deferred writes.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart loads the identity's cart with its lines and referenced products.
// It returns nil without error when the identity has no cart; it never
// creates one.
func (s *CartService) GetCart(ident identity.Identity) (*models.Cart, error) {
	query, err := s.ownerScope(s.db, ident)
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := query.Preload("Items.Product.Promotion").First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return &cart, nil
}

// AddItem puts quantity units of a product into the identity's cart,
// creating the cart on first use and incrementing the line when the product
// is already present. Quantities below 1 are normalized to 1.
func (s *CartService) AddItem(ident identity.Identity, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	cart, err := s.findOrCreateCart(ident)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += quantity
		if err := s.db.Model(&item).Update("quantity", item.Quantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart line: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart line: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load cart line: %w", err)
	}

	return s.GetCart(ident)
}

// UpdateQuantity sets a line's quantity, removing the line when quantity
// drops to zero or below. A missing line is a no-op.
func (s *CartService) UpdateQuantity(cartID, productID uuid.UUID, quantity int) error {
	var item models.CartItem
	err := s.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart line: %w", err)
	}

	if quantity <= 0 {
		// Hard delete; a soft-deleted row would trip the cart+product
		// unique index when the product is re-added.
		return s.db.Unscoped().Delete(&item).Error
	}

	return s.db.Model(&item).Update("quantity", quantity).Error
}

// RemoveItem deletes a line if present. Removing an absent line succeeds.
func (s *CartService) RemoveItem(cartID, productID uuid.UUID) error {
	return s.db.Unscoped().
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// MergeAnonymousCart re-homes an anonymous cart onto the customer's cart on
// login, adding quantities for products present in both and deleting the
// anonymous cart. Running it again with the same token is a no-op.
func (s *CartService) MergeAnonymousCart(customerID uuid.UUID, token string) error {
	if token == "" {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var anonCart models.Cart
		err := tx.Preload("Items").Where("anonymous_id = ?", token).First(&anonCart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load anonymous cart: %w", err)
		}

		var userCart models.Cart
		err = tx.Where("customer_id = ?", customerID).First(&userCart).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			userCart = models.Cart{CustomerID: &customerID}
			if err := tx.Create(&userCart).Error; err != nil {
				return fmt.Errorf("failed to create customer cart: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load customer cart: %w", err)
		}

		for _, anonItem := range anonCart.Items {
			var existing models.CartItem
			err := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, anonItem.ProductID).
				First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).
					Update("quantity", existing.Quantity+anonItem.Quantity).Error; err != nil {
					return fmt.Errorf("failed to merge cart line: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				item := models.CartItem{
					CartID:    userCart.ID,
					ProductID: anonItem.ProductID,
					Quantity:  anonItem.Quantity,
					AddedAt:   anonItem.AddedAt,
				}
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("failed to move cart line: %w", err)
				}
			default:
				return fmt.Errorf("failed to load cart line: %w", err)
			}
		}

		if err := tx.Unscoped().Where("cart_id = ?", anonCart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete anonymous cart lines: %w", err)
		}
		return tx.Unscoped().Delete(&anonCart).Error
	})
}

func (s *CartService) findOrCreateCart(ident identity.Identity) (*models.Cart, error) {
	query, err := s.ownerScope(s.db, ident)
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	err = query.First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if customerID, ok := ident.CustomerID(); ok {
		var count int64
		if err := s.db.Model(&models.Customer{}).Where("id = ?", customerID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve customer: %w", err)
		}
		if count == 0 {
			return nil, ErrIdentityUnresolved
		}
		cart = models.Cart{CustomerID: &customerID}
	} else if token, ok := ident.Token(); ok {
		cart = models.Cart{AnonymousID: &token}
	}

	if err := s.db.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

func (s *CartService) ownerScope(db *gorm.DB, ident identity.Identity) (*gorm.DB, error) {
	if customerID, ok := ident.CustomerID(); ok {
		return db.Where("customer_id = ?", customerID), nil
	}
	if token, ok := ident.Token(); ok && token != "" {
		return db.Where("anonymous_id = ?", token), nil
	}
	return nil, ErrIdentityUnresolved
}
