// internal/services/cart_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/models"
)

func TestPriceCartSimpleProduct(t *testing.T) {
	product := &models.Product{
		Name:            "Aurora Lamp",
		Slug:            "aurora-lamp",
		Price:           80,
		DiscountPercent: 25,
		Stock:           10,
		Status:          models.ProductStatusActive,
		Images:          pq.StringArray{"products/aurora-lamp/1.jpg"},
	}

	lines, subtotal, discountTotal, total := PriceCart([]models.CartItem{
		{ProductID: uuid.New(), Quantity: 2, Product: product},
	})

	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "Aurora Lamp", line.Name)
	assert.Equal(t, "aurora-lamp", line.Slug)
	assert.Equal(t, "products/aurora-lamp/1.jpg", line.Image)
	assert.InDelta(t, 80.00, line.UnitPrice, 0.0001)
	assert.InDelta(t, 60.00, line.FinalUnitPrice, 0.0001)
	assert.InDelta(t, 120.00, line.LineTotal, 0.0001)
	assert.True(t, line.Available)
	assert.Equal(t, 10, line.AvailableStock)

	assert.InDelta(t, 160.00, subtotal, 0.0001)
	assert.InDelta(t, 40.00, discountTotal, 0.0001)
	assert.InDelta(t, 120.00, total, 0.0001)
}

func TestPriceCartVariationOverrides(t *testing.T) {
	price := 120.0
	product := &models.Product{
		Name:            "Graphic Tee",
		Slug:            "graphic-tee",
		Price:           100,
		DiscountPercent: 10,
		Stock:           0, // the variation's stock governs
		Status:          models.ProductStatusActive,
	}
	variation := &models.ProductVariation{
		SKU:        "TEE-BLK-M",
		Price:      &price,
		Stock:      3,
		Attributes: models.JSONB{"color": "black", "size": "m"},
		Image:      "products/graphic-tee/black.jpg",
	}

	lines, subtotal, discountTotal, total := PriceCart([]models.CartItem{
		{ProductID: uuid.New(), Quantity: 1, Product: product, Variation: variation},
	})

	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "TEE-BLK-M", line.SKU)
	assert.Equal(t, map[string]string{"color": "black", "size": "m"}, line.Attributes)
	assert.Equal(t, "products/graphic-tee/black.jpg", line.Image)
	// Own price, product discount falls through.
	assert.InDelta(t, 120.00, line.UnitPrice, 0.0001)
	assert.InDelta(t, 108.00, line.FinalUnitPrice, 0.0001)
	assert.Equal(t, 3, line.AvailableStock)
	assert.True(t, line.Available)

	assert.InDelta(t, 120.00, subtotal, 0.0001)
	assert.InDelta(t, 12.00, discountTotal, 0.0001)
	assert.InDelta(t, 108.00, total, 0.0001)
}

func TestPriceCartExcludesUnavailableLines(t *testing.T) {
	inactive := &models.Product{
		Name: "Retired Lamp", Slug: "retired-lamp",
		Price: 50, Stock: 5, Status: models.ProductStatusArchived,
	}
	lowStock := &models.Product{
		Name: "Scarce Lamp", Slug: "scarce-lamp",
		Price: 50, Stock: 2, Status: models.ProductStatusActive,
	}

	lines, subtotal, discountTotal, total := PriceCart([]models.CartItem{
		{ProductID: uuid.New(), Quantity: 1}, // product deleted since it was added
		{ProductID: uuid.New(), Quantity: 1, Product: inactive},
		{ProductID: uuid.New(), Quantity: 5, Product: lowStock},
	})

	require.Len(t, lines, 3)
	assert.False(t, lines[0].Available)
	assert.False(t, lines[1].Available)
	assert.False(t, lines[2].Available)
	assert.Equal(t, 2, lines[2].AvailableStock)

	assert.InDelta(t, 0.00, subtotal, 0.0001)
	assert.InDelta(t, 0.00, discountTotal, 0.0001)
	assert.InDelta(t, 0.00, total, 0.0001)
}

func TestPriceCartEmpty(t *testing.T) {
	lines, subtotal, discountTotal, total := PriceCart(nil)

	assert.Empty(t, lines)
	assert.InDelta(t, 0.00, subtotal, 0.0001)
	assert.InDelta(t, 0.00, discountTotal, 0.0001)
	assert.InDelta(t, 0.00, total, 0.0001)
}

func TestStockFor(t *testing.T) {
	product := &models.Product{Stock: 7}

	assert.Equal(t, 7, stockFor(product, nil))
	assert.Equal(t, 2, stockFor(product, &models.ProductVariation{Stock: 2}))
	assert.Equal(t, 0, stockFor(product, &models.ProductVariation{}))
}

func TestCartExpired(t *testing.T) {
	now := time.Now()
	cart := &models.Cart{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, cart.Expired(now))
	assert.True(t, cart.Expired(now.Add(2*time.Hour)))
}
