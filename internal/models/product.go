// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Name            string         `json:"name" gorm:"size:255;not null"`
	Slug            string         `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Description     string         `json:"description" gorm:"type:text"`
	BrandID         *uuid.UUID     `json:"brand_id" gorm:"type:uuid;index"`
	CategoryID      *uuid.UUID     `json:"category_id" gorm:"type:uuid;index"`
	Price           float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	DiscountPercent float64        `json:"discount_percent" gorm:"type:decimal(5,2);default:0"`
	Stock           int            `json:"stock" gorm:"default:0"`
	Images          pq.StringArray `json:"images" gorm:"type:text[]"`
	Specifications  JSONB          `json:"specifications" gorm:"type:jsonb"`
	Status          ProductStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Featured        bool           `json:"featured" gorm:"default:false;index"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	ViewCount       int64          `json:"view_count" gorm:"default:0"`
	SalesCount      int64          `json:"sales_count" gorm:"default:0"`

	// Relationships
	Brand       *Brand             `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Category    *Category          `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Collections []Collection       `json:"collections,omitempty" gorm:"many2many:product_collections"`
	Variations  []ProductVariation `json:"variations,omitempty" gorm:"foreignKey:ProductID"`
}

// HasVariations reports whether the product is sold through variations. Simple
// products keep price and stock on the product row itself.
func (p *Product) HasVariations() bool {
	return len(p.Variations) > 0
}

// EffectivePrice returns the unit price after the product-level discount,
// rounded to cents.
func (p *Product) EffectivePrice() float64 {
	return DiscountedPrice(p.Price, p.DiscountPercent)
}

// ProductVariation is a purchasable SKU of a product, distinguished by its
// attribute set (e.g. {"color": "black", "size": "m"}). Attributes maps
// attribute slugs to value slugs and must be unique per product.
type ProductVariation struct {
	BaseModel
	ProductID       uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	SKU             string    `json:"sku" gorm:"size:100;index"`
	Price           *float64  `json:"price" gorm:"type:decimal(10,2)"`
	DiscountPercent *float64  `json:"discount_percent" gorm:"type:decimal(5,2)"`
	Stock           int       `json:"stock" gorm:"default:0"`
	Attributes      JSONB     `json:"attributes" gorm:"type:jsonb;not null"`
	Image           string    `json:"image" gorm:"size:500"`
	Position        int       `json:"position" gorm:"default:0"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// UnitPrice resolves the variation's own price when set, falling back to the
// parent product's price.
func (v *ProductVariation) UnitPrice(product *Product) float64 {
	if v.Price != nil {
		return *v.Price
	}
	return product.Price
}

// Discount resolves the variation's own discount when set, falling back to the
// parent product's discount.
func (v *ProductVariation) Discount(product *Product) float64 {
	if v.DiscountPercent != nil {
		return *v.DiscountPercent
	}
	return product.DiscountPercent
}

// AttributeMap returns the variation's attribute set as attribute-slug to
// value-slug pairs. Non-string values in the stored JSONB are skipped.
func (v *ProductVariation) AttributeMap() map[string]string {
	m := make(map[string]string, len(v.Attributes))
	for attr, raw := range v.Attributes {
		if value, ok := raw.(string); ok {
			m[attr] = value
		}
	}
	return m
}
