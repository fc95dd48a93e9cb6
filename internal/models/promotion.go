// internal/models/promotion.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	BaseModel
	Name            string          `json:"name" gorm:"size:100;not null"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:decimal(5,2);not null;default:0"`
	BadgeText       string          `json:"badge_text" gorm:"size:50"`
	StartDate       time.Time       `json:"start_date" gorm:"not null"`
	EndDate         time.Time       `json:"end_date" gorm:"not null"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:PromotionID"`
}
