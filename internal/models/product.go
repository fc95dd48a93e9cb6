// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Available   bool            `json:"available" gorm:"default:true"`
	ImageURL    string          `json:"image_url" gorm:"size:500"`
	ViewCount   int64           `json:"view_count" gorm:"default:0"`
	CategoryID  uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	PromotionID *uuid.UUID      `json:"promotion_id" gorm:"type:uuid;index"`

	// Relationships
	Category  Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Promotion *Promotion `json:"promotion,omitempty" gorm:"foreignKey:PromotionID"`
}

// EffectivePrice returns the unit price after applying the product's
// promotion, if one is active and now falls inside its window. The result is
// rounded to 2 decimal places, half away from zero. A discount that computes
// to a non-positive amount falls back to the list price.
//
// Callers must use a single now for every product priced within one checkout.
func (p *Product) EffectivePrice(now time.Time) decimal.Decimal {
	promo := p.Promotion
	if promo == nil || !promo.IsActive || !promo.DiscountPercent.IsPositive() {
		return p.Price
	}
	if now.Before(promo.StartDate) || now.After(promo.EndDate) {
		return p.Price
	}

	factor := decimal.NewFromInt(1).Sub(promo.DiscountPercent.Div(decimal.NewFromInt(100)))
	discounted := p.Price.Mul(factor).Round(2)
	if !discounted.IsPositive() {
		return p.Price
	}
	return discounted
}
