// internal/models/product_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductEffectivePrice(t *testing.T) {
	product := &Product{Price: 80, DiscountPercent: 25}
	assert.InDelta(t, 60.00, product.EffectivePrice(), 0.0001)

	product = &Product{Price: 80}
	assert.InDelta(t, 80.00, product.EffectivePrice(), 0.0001)
}

func TestVariationPriceFallback(t *testing.T) {
	product := &Product{Price: 100, DiscountPercent: 10}

	plain := &ProductVariation{}
	assert.InDelta(t, 100.00, plain.UnitPrice(product), 0.0001)
	assert.InDelta(t, 10.00, plain.Discount(product), 0.0001)

	price := 120.0
	discount := 0.0
	override := &ProductVariation{Price: &price, DiscountPercent: &discount}
	assert.InDelta(t, 120.00, override.UnitPrice(product), 0.0001)
	// An explicit zero overrides the product discount rather than falling back.
	assert.InDelta(t, 0.00, override.Discount(product), 0.0001)
}

func TestVariationAttributeMap(t *testing.T) {
	variation := &ProductVariation{Attributes: JSONB{
		"color": "black",
		"size":  "m",
		"count": 3, // non-string values are skipped
	}}

	assert.Equal(t, map[string]string{"color": "black", "size": "m"}, variation.AttributeMap())
}

func TestHasVariations(t *testing.T) {
	product := &Product{}
	assert.False(t, product.HasVariations())

	product.Variations = []ProductVariation{{SKU: "SKU-1"}}
	assert.True(t, product.HasVariations())
}
