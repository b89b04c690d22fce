// internal/models/pricing_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCents(t *testing.T) {
	assert.InDelta(t, 10.00, RoundCents(10.004), 0.0001)
	assert.InDelta(t, 10.01, RoundCents(10.006), 0.0001)
	assert.InDelta(t, 20.00, RoundCents(19.999), 0.0001)
	assert.InDelta(t, 12.34, RoundCents(12.3449), 0.0001)
	assert.InDelta(t, 0.00, RoundCents(0), 0.0001)
}

func TestDiscountedPrice(t *testing.T) {
	assert.InDelta(t, 75.00, DiscountedPrice(100, 25), 0.0001)
	assert.InDelta(t, 17.99, DiscountedPrice(19.99, 10), 0.0001)
	assert.InDelta(t, 33.33, DiscountedPrice(49.99, 33.33), 0.0001)
}

func TestDiscountedPriceClamps(t *testing.T) {
	assert.InDelta(t, 50.00, DiscountedPrice(50, 0), 0.0001)
	assert.InDelta(t, 50.00, DiscountedPrice(50, -5), 0.0001)
	assert.InDelta(t, 0.00, DiscountedPrice(50, 100), 0.0001)
	assert.InDelta(t, 0.00, DiscountedPrice(50, 150), 0.0001)
}
