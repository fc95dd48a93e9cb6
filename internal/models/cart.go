// internal/models/cart.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart belongs to exactly one identity: a registered customer or an
// anonymous token. At most one cart exists per identity at a time.
type Cart struct {
	BaseModel
	CustomerID  *uuid.UUID `json:"customer_id" gorm:"type:uuid;uniqueIndex"`
	AnonymousID *string    `json:"anonymous_id" gorm:"size:64;uniqueIndex"`

	// Relationships
	Customer *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

type CartItem struct {
	BaseModel
	CartID    uuid.UUID `json:"cart_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	AddedAt   time.Time `json:"added_at" gorm:"not null"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
