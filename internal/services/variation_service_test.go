// internal/services/variation_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/models"
)

func testVariation(sku string, stock int, attrs map[string]interface{}) models.ProductVariation {
	return models.ProductVariation{
		SKU:        sku,
		Stock:      stock,
		Attributes: models.JSONB(attrs),
	}
}

func testVariations() []models.ProductVariation {
	return []models.ProductVariation{
		testVariation("TEE-BLK-M", 2, map[string]interface{}{"color": "black", "size": "m"}),
		testVariation("TEE-BLK-L", 0, map[string]interface{}{"color": "black", "size": "l"}),
		testVariation("TEE-WHT-M", 5, map[string]interface{}{"color": "white", "size": "m"}),
	}
}

func TestMatchVariationExact(t *testing.T) {
	variations := testVariations()

	match := MatchVariation(variations, map[string]string{"color": "black", "size": "l"})
	require.NotNil(t, match)
	assert.Equal(t, "TEE-BLK-L", match.SKU)

	match = MatchVariation(variations, map[string]string{"size": "m", "color": "white"})
	require.NotNil(t, match)
	assert.Equal(t, "TEE-WHT-M", match.SKU)
}

func TestMatchVariationRejectsPartialSelection(t *testing.T) {
	variations := testVariations()

	// Subset: one axis still unselected.
	assert.Nil(t, MatchVariation(variations, map[string]string{"color": "black"}))

	// Superset: an axis no variation carries.
	assert.Nil(t, MatchVariation(variations, map[string]string{
		"color": "black", "size": "m", "material": "cotton",
	}))

	// Wrong value.
	assert.Nil(t, MatchVariation(variations, map[string]string{"color": "red", "size": "m"}))
}

func TestVariationAxes(t *testing.T) {
	axes := VariationAxes(testVariations())

	require.Len(t, axes, 2)
	// Values keep first-seen order across the variation list.
	assert.Equal(t, []string{"black", "white"}, axes["color"])
	assert.Equal(t, []string{"m", "l"}, axes["size"])
}

func TestVariationAxesEmpty(t *testing.T) {
	assert.Empty(t, VariationAxes(nil))
}

func TestAvailability(t *testing.T) {
	variations := testVariations()

	// With black selected, size l is dead: TEE-BLK-L is out of stock.
	result := Availability(variations, map[string]string{"color": "black"})

	assert.True(t, result["color"]["black"])
	assert.True(t, result["color"]["white"])
	assert.True(t, result["size"]["m"])
	assert.False(t, result["size"]["l"])
}

func TestAvailabilityExcludesOwnAxis(t *testing.T) {
	variations := testVariations()

	// With size l selected, other size values stay reachable because a value's
	// own axis is excluded when testing it, but every color is now dead.
	result := Availability(variations, map[string]string{"size": "l"})

	assert.True(t, result["size"]["m"])
	assert.False(t, result["size"]["l"])
	assert.False(t, result["color"]["black"])
	assert.False(t, result["color"]["white"])
}

func TestAvailabilityEmptySelection(t *testing.T) {
	result := Availability(testVariations(), map[string]string{})

	assert.True(t, result["color"]["black"])
	assert.True(t, result["color"]["white"])
	assert.True(t, result["size"]["m"])
	assert.False(t, result["size"]["l"], "no in-stock variation has size l")
}
