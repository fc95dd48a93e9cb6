// internal/models/favorite.go
package models

import (
	"github.com/google/uuid"
)

// Favorite links a product to a registered customer or to an anonymous
// token. Exactly one owner column is set; the pair (owner, product) is
// unique. Anonymous rows are migrated to the customer on login.
type Favorite struct {
	BaseModel
	CustomerID  *uuid.UUID `json:"customer_id" gorm:"type:uuid;index;uniqueIndex:idx_customer_product"`
	AnonymousID *string    `json:"anonymous_id" gorm:"size:64;index;uniqueIndex:idx_anonymous_product"`
	ProductID   uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_customer_product;uniqueIndex:idx_anonymous_product"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
