// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/models"
	"github.com/innovatech/storefront-backend/internal/utils"
)

// ProductService serves the catalog: product listing and detail for the
// storefront, and product/category management for administrators.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

type ProductRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=150"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
	Available   *bool           `json:"available"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
	PromotionID *uuid.UUID      `json:"promotion_id"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// ListProducts returns a catalog page. Unavailable products are hidden
// unless includeUnavailable is set (admin views).
func (s *ProductService) ListProducts(params utils.PaginationParams, includeUnavailable bool) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Product{}).Preload("Category").Preload("Promotion")

	if !includeUnavailable {
		query = query.Where("available = ?", true)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}
	if params.Category != "" {
		if categoryID, err := uuid.Parse(params.Category); err == nil {
			query = query.Where("category_id = ?", categoryID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, []string{"name", "price", "view_count", "created_at"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	result := utils.CreatePaginationResult(products, total, params)
	return &result, nil
}

// GetProduct loads one product with its category and promotion. When
// countView is set the view counter is bumped off the request path.
func (s *ProductService) GetProduct(productID uuid.UUID, countView bool) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Category").Preload("Promotion").
		First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if countView {
		go s.incrementViewCount(productID)
	}

	return &product, nil
}

func (s *ProductService) incrementViewCount(productID uuid.UUID) {
	err := s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		logrus.WithError(err).WithField("product_id", productID).
			Warn("Failed to increment product view count")
	}
}

func (s *ProductService) CreateProduct(req *ProductRequest) (*models.Product, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("category %s does not exist", req.CategoryID)
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Available:   true,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		PromotionID: req.PromotionID,
	}
	if req.Available != nil {
		product.Available = *req.Available
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.GetProduct(product.ID, false)
}

func (s *ProductService) UpdateProduct(productID uuid.UUID, req *ProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(productID, false)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"description":  req.Description,
		"price":        req.Price,
		"stock":        req.Stock,
		"image_url":    req.ImageURL,
		"category_id":  req.CategoryID,
		"promotion_id": req.PromotionID,
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.GetProduct(productID, false)
}

// DeleteProduct removes a product that nothing references. Products sitting
// in carts or frozen into purchase history cannot be deleted; they should be
// marked unavailable instead.
func (s *ProductService) DeleteProduct(productID uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.CartItem{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check cart references: %w", err)
	}
	if count > 0 {
		return ErrProductInUse
	}
	if err := s.db.Model(&models.PurchaseLineItem{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check purchase references: %w", err)
	}
	if count > 0 {
		return ErrProductInUse
	}

	result := s.db.Delete(&models.Product{}, "id = ?", productID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *ProductService) CreateCategory(req *CategoryRequest) (*models.Category, error) {
	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}
