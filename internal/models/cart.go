// internal/models/cart.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a guest cart addressed by an opaque token. Items only store the
// product/variation reference and quantity; prices are resolved at read time
// so the storefront always sees the current price.
type Cart struct {
	BaseModel
	Token     string    `json:"token" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`

	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID"`
}

func (c *Cart) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type CartItem struct {
	BaseModel
	CartID      uuid.UUID  `json:"cart_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	VariationID *uuid.UUID `json:"variation_id" gorm:"type:uuid;index"`
	Quantity    int        `json:"quantity" gorm:"not null"`

	Product   *Product          `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Variation *ProductVariation `json:"variation,omitempty" gorm:"foreignKey:VariationID"`
}

// SameLine reports whether the item references the same product+variation
// combination; such lines are merged instead of duplicated.
func (i *CartItem) SameLine(productID uuid.UUID, variationID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariationID == nil || variationID == nil {
		return i.VariationID == nil && variationID == nil
	}
	return *i.VariationID == *variationID
}
