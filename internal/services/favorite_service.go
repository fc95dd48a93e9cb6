// internal/services/favorite_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/identity"
	"github.com/innovatech/storefront-backend/internal/models"
)

// FavoriteService tracks per-identity product favorites and performs the
// merge of anonymous state into a customer account on login.
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Toggle flips a product's favorite state for the identity and reports the
// resulting state: true when the product is now a favorite.
func (s *FavoriteService) Toggle(ident identity.Identity, productID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to resolve product: %w", err)
	}
	if count == 0 {
		return false, ErrProductNotFound
	}

	scope, err := s.identityScope(s.db, ident)
	if err != nil {
		return false, err
	}

	var existing models.Favorite
	err = scope.Where("product_id = ?", productID).First(&existing).Error
	switch {
	case err == nil:
		// Hard delete so re-favoriting does not trip the unique index.
		if err := s.db.Unscoped().Delete(&existing).Error; err != nil {
			return false, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		favorite := models.Favorite{ProductID: productID}
		if customerID, ok := ident.CustomerID(); ok {
			favorite.CustomerID = &customerID
		} else if token, ok := ident.Token(); ok {
			favorite.AnonymousID = &token
		}
		if err := s.db.Create(&favorite).Error; err != nil {
			return false, fmt.Errorf("failed to add favorite: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("failed to load favorite: %w", err)
	}
}

// List returns the identity's favorite products with promotions preloaded
// so callers can render effective prices.
func (s *FavoriteService) List(ident identity.Identity) ([]models.Product, error) {
	scope, err := s.identityScope(s.db, ident)
	if err != nil {
		return nil, err
	}

	var favorites []models.Favorite
	if err := scope.Order("created_at DESC").Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if len(favorites) == 0 {
		return []models.Product{}, nil
	}

	ids := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ProductID)
	}

	var products []models.Product
	if err := s.db.Preload("Promotion").Preload("Category").
		Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load favorite products: %w", err)
	}
	return products, nil
}

// MergeOnLogin folds anonymous favorites, plus an optional list of product
// IDs held client-side before any cookie existed, into the customer's
// favorites. Duplicates collapse and unknown products are skipped, so
// replaying the merge after a retried login changes nothing.
func (s *FavoriteService) MergeOnLogin(customerID uuid.UUID, token string, sessionProductIDs []uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var owned []models.Favorite
		if err := tx.Where("customer_id = ?", customerID).Find(&owned).Error; err != nil {
			return fmt.Errorf("failed to load customer favorites: %w", err)
		}
		seen := make(map[uuid.UUID]bool, len(owned))
		for _, f := range owned {
			seen[f.ProductID] = true
		}

		adopt := func(productID uuid.UUID) error {
			if seen[productID] {
				return nil
			}
			var count int64
			if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to resolve product: %w", err)
			}
			if count == 0 {
				return nil
			}
			favorite := models.Favorite{CustomerID: &customerID, ProductID: productID}
			if err := tx.Create(&favorite).Error; err != nil {
				return fmt.Errorf("failed to adopt favorite: %w", err)
			}
			seen[productID] = true
			return nil
		}

		if token != "" {
			var anonymous []models.Favorite
			if err := tx.Where("anonymous_id = ?", token).Find(&anonymous).Error; err != nil {
				return fmt.Errorf("failed to load anonymous favorites: %w", err)
			}
			for _, f := range anonymous {
				if err := adopt(f.ProductID); err != nil {
					return err
				}
			}
			if err := tx.Unscoped().Where("anonymous_id = ?", token).Delete(&models.Favorite{}).Error; err != nil {
				return fmt.Errorf("failed to delete anonymous favorites: %w", err)
			}
		}

		for _, productID := range sessionProductIDs {
			if err := adopt(productID); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *FavoriteService) identityScope(db *gorm.DB, ident identity.Identity) (*gorm.DB, error) {
	if customerID, ok := ident.CustomerID(); ok {
		return db.Model(&models.Favorite{}).Where("customer_id = ?", customerID), nil
	}
	if token, ok := ident.Token(); ok && token != "" {
		return db.Model(&models.Favorite{}).Where("anonymous_id = ?", token), nil
	}
	return nil, ErrIdentityUnresolved
}
