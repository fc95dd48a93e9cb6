// internal/services/promotion_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/models"
)

var ErrPromotionNotFound = errors.New("promotion not found")

// PromotionService manages time-windowed percentage promotions that product
// pricing reads at checkout and display time.
type PromotionService struct {
	db *gorm.DB
}

func NewPromotionService(db *gorm.DB) *PromotionService {
	return &PromotionService{db: db}
}

type PromotionRequest struct {
	Name            string          `json:"name" binding:"required,min=2,max=100"`
	DiscountPercent decimal.Decimal `json:"discount_percent" binding:"required"`
	BadgeText       string          `json:"badge_text" binding:"max=50"`
	StartDate       time.Time       `json:"start_date" binding:"required"`
	EndDate         time.Time       `json:"end_date" binding:"required"`
	IsActive        *bool           `json:"is_active"`
}

func (s *PromotionService) ListPromotions() ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := s.db.Order("start_date DESC").Find(&promotions).Error; err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return promotions, nil
}

func (s *PromotionService) GetPromotion(promotionID uuid.UUID) (*models.Promotion, error) {
	var promotion models.Promotion
	err := s.db.Preload("Products").First(&promotion, "id = ?", promotionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPromotionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load promotion: %w", err)
	}
	return &promotion, nil
}

func (s *PromotionService) CreatePromotion(req *PromotionRequest) (*models.Promotion, error) {
	if err := validatePromotionWindow(req); err != nil {
		return nil, err
	}

	promotion := models.Promotion{
		Name:            req.Name,
		DiscountPercent: req.DiscountPercent,
		BadgeText:       req.BadgeText,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		IsActive:        true,
	}
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}

	if err := s.db.Create(&promotion).Error; err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	return &promotion, nil
}

func (s *PromotionService) UpdatePromotion(promotionID uuid.UUID, req *PromotionRequest) (*models.Promotion, error) {
	if err := validatePromotionWindow(req); err != nil {
		return nil, err
	}

	promotion, err := s.GetPromotion(promotionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":             req.Name,
		"discount_percent": req.DiscountPercent,
		"badge_text":       req.BadgeText,
		"start_date":       req.StartDate,
		"end_date":         req.EndDate,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(promotion).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}
	return s.GetPromotion(promotionID)
}

// DeletePromotion detaches the promotion from its products before removing
// it, so affected products fall back to list price.
func (s *PromotionService) DeletePromotion(promotionID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Product{}).
			Where("promotion_id = ?", promotionID).
			Update("promotion_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach promotion from products: %w", err)
		}

		result := tx.Delete(&models.Promotion{}, "id = ?", promotionID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete promotion: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPromotionNotFound
		}
		return nil
	})
}

func validatePromotionWindow(req *PromotionRequest) error {
	if !req.EndDate.After(req.StartDate) {
		return errors.New("promotion end date must be after start date")
	}
	hundred := decimal.NewFromInt(100)
	if !req.DiscountPercent.IsPositive() || req.DiscountPercent.GreaterThan(hundred) {
		return errors.New("discount percent must be between 0 and 100")
	}
	return nil
}
