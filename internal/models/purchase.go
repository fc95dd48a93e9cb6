// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is the immutable record of a completed checkout. Its line items
// freeze unit pricing at purchase time; the only write after creation is the
// one-shot coupon discount applied by the checkout service.
type Purchase struct {
	BaseModel
	CustomerID     uuid.UUID       `json:"customer_id" gorm:"type:uuid;not null;index"`
	EmployeeID     *uuid.UUID      `json:"employee_id" gorm:"type:uuid;index"`
	PurchasedAt    time.Time       `json:"purchased_at" gorm:"not null;index"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Tax            decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Paid           bool            `json:"paid" gorm:"default:false"`
	CouponCode     *string         `json:"coupon_code" gorm:"size:50"`

	// Relationships
	Customer Customer           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Employee *Employee          `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	Items    []PurchaseLineItem `json:"items,omitempty" gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
}

type PurchaseLineItem struct {
	BaseModel
	PurchaseID uuid.UUID       `json:"purchase_id" gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Subtotal   decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
