// internal/services/coupon_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/identity"
	"github.com/innovatech/storefront-backend/internal/models"
	"github.com/innovatech/storefront-backend/internal/utils"
)

// CouponService validates coupon codes and maintains the per-identity
// applied coupon that checkout later consumes.
type CouponService struct {
	db *gorm.DB
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

type CouponRequest struct {
	Code            string    `json:"code" binding:"required,min=1,max=50"`
	Description     string    `json:"description" binding:"max=200"`
	DiscountPercent int       `json:"discount_percent" binding:"required,min=1,max=100"`
	ValidFrom       time.Time `json:"valid_from" binding:"required"`
	ValidTo         time.Time `json:"valid_to" binding:"required"`
	IsActive        *bool     `json:"is_active"`
}

// NormalizeCode is the canonical form for lookups and storage: surrounding
// whitespace stripped, upper-cased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate resolves a code to its coupon. The validity window is compared by
// calendar date, inclusive at both ends, so a coupon expiring today still
// validates at 23:59.
func (s *CouponService) Validate(code string, today time.Time) (*models.Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, ErrCouponNotFound
	}

	var coupon models.Coupon
	err := s.db.Where("code = ? AND is_active = ?", normalized, true).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}

	day := truncateToDate(today)
	if day.Before(truncateToDate(coupon.ValidFrom)) || day.After(truncateToDate(coupon.ValidTo)) {
		return nil, ErrCouponExpired
	}

	return &coupon, nil
}

// Apply validates the code and records it as the identity's applied coupon,
// replacing whatever was applied before. One applied coupon per identity.
func (s *CouponService) Apply(ident identity.Identity, code string, today time.Time) (*models.AppliedCoupon, error) {
	coupon, err := s.Validate(code, today)
	if err != nil {
		return nil, err
	}

	applied := models.AppliedCoupon{
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
	}
	if customerID, ok := ident.CustomerID(); ok {
		applied.CustomerID = &customerID
	} else if token, ok := ident.Token(); ok && token != "" {
		applied.AnonymousID = &token
	} else {
		return nil, ErrIdentityUnresolved
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.identityScope(tx, ident).Unscoped().Delete(&models.AppliedCoupon{}).Error; err != nil {
			return fmt.Errorf("failed to replace applied coupon: %w", err)
		}
		return tx.Create(&applied).Error
	})
	if err != nil {
		return nil, err
	}

	return &applied, nil
}

// Current returns the identity's applied coupon, re-checking validity: if
// the underlying coupon has expired or been deactivated since it was
// applied, the stale row is cleared and nil is returned.
func (s *CouponService) Current(ident identity.Identity, today time.Time) (*models.AppliedCoupon, error) {
	var applied models.AppliedCoupon
	err := s.identityScope(s.db, ident).First(&applied).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load applied coupon: %w", err)
	}

	if _, err := s.Validate(applied.Code, today); err != nil {
		if errors.Is(err, ErrCouponNotFound) || errors.Is(err, ErrCouponExpired) {
			if clearErr := s.Clear(ident); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		return nil, err
	}

	return &applied, nil
}

// MergeAnonymousCoupon re-homes the applied coupon stored under the
// anonymous token to the signed-in customer, so a discount applied while
// browsing as a guest survives login. The guest's coupon is the more recent
// intent and replaces whatever the customer had applied before. Idempotent:
// a second merge finds no anonymous row and does nothing.
func (s *CouponService) MergeAnonymousCoupon(customerID uuid.UUID, token string) error {
	if token == "" {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var applied models.AppliedCoupon
		err := tx.Where("anonymous_id = ?", token).First(&applied).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load anonymous coupon: %w", err)
		}

		// Hard deletes: the identity columns carry unique indexes and the
		// adopted row must not collide with a soft-deleted one.
		if err := tx.Unscoped().Where("customer_id = ?", customerID).Delete(&models.AppliedCoupon{}).Error; err != nil {
			return fmt.Errorf("failed to replace applied coupon: %w", err)
		}
		if err := tx.Unscoped().Delete(&applied).Error; err != nil {
			return fmt.Errorf("failed to clear anonymous coupon: %w", err)
		}

		adopted := models.AppliedCoupon{
			CustomerID:      &customerID,
			Code:            applied.Code,
			DiscountPercent: applied.DiscountPercent,
		}
		return tx.Create(&adopted).Error
	})
}

// Clear drops the identity's applied coupon if any. Hard delete: the
// identity columns carry unique indexes, so a soft-deleted row would block
// the next Apply.
func (s *CouponService) Clear(ident identity.Identity) error {
	return s.identityScope(s.db, ident).Unscoped().Delete(&models.AppliedCoupon{}).Error
}

func (s *CouponService) identityScope(db *gorm.DB, ident identity.Identity) *gorm.DB {
	if customerID, ok := ident.CustomerID(); ok {
		return db.Where("customer_id = ?", customerID)
	}
	if token, ok := ident.Token(); ok {
		return db.Where("anonymous_id = ?", token)
	}
	// Zero identity matches nothing.
	return db.Where("1 = 0")
}

// --- Admin CRUD ---

func (s *CouponService) ListCoupons(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Coupon{})
	if params.Search != "" {
		search := "%" + NormalizeCode(params.Search) + "%"
		query = query.Where("code LIKE ?", search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count coupons: %w", err)
	}

	var coupons []models.Coupon
	query = utils.ApplySort(query, params, []string{"code", "valid_to", "created_at"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	result := utils.CreatePaginationResult(coupons, total, params)
	return &result, nil
}

func (s *CouponService) CreateCoupon(req *CouponRequest) (*models.Coupon, error) {
	coupon := models.Coupon{
		Code:            NormalizeCode(req.Code),
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		ValidFrom:       req.ValidFrom,
		ValidTo:         req.ValidTo,
		IsActive:        true,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := s.db.Create(&coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &coupon, nil
}

func (s *CouponService) UpdateCoupon(code string, req *CouponRequest) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.Where("code = ?", NormalizeCode(code)).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}

	updates := map[string]interface{}{
		"description":      req.Description,
		"discount_percent": req.DiscountPercent,
		"valid_from":       req.ValidFrom,
		"valid_to":         req.ValidTo,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&coupon).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	return &coupon, nil
}

func (s *CouponService) DeleteCoupon(code string) error {
	result := s.db.Where("code = ?", NormalizeCode(code)).Delete(&models.Coupon{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
