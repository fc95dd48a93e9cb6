// internal/models/coupon.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	BaseModel
	Code            string    `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Description     string    `json:"description" gorm:"size:200"`
	DiscountPercent int       `json:"discount_percent" gorm:"not null"`
	ValidFrom       time.Time `json:"valid_from" gorm:"not null"`
	ValidTo         time.Time `json:"valid_to" gorm:"not null"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
}

// AppliedCoupon is the coupon a checkout session currently carries. It is
// scoped to one identity (registered customer or anonymous token), replaced
// on re-apply and deleted once the purchase discount has been written.
type AppliedCoupon struct {
	BaseModel
	CustomerID      *uuid.UUID `json:"customer_id" gorm:"type:uuid;uniqueIndex"`
	AnonymousID     *string    `json:"anonymous_id" gorm:"size:64;uniqueIndex"`
	Code            string     `json:"code" gorm:"size:50;not null"`
	DiscountPercent int        `json:"discount_percent" gorm:"not null"`
}
