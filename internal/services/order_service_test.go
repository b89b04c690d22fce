// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/config"
)

func TestMergeLinesCombinesDuplicates(t *testing.T) {
	productA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	productB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	variation := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	merged := mergeLines([]CheckoutLine{
		{ProductID: productB, Quantity: 1},
		{ProductID: productA, VariationID: &variation, Quantity: 2},
		{ProductID: productA, VariationID: &variation, Quantity: 3},
		{ProductID: productA, Quantity: 1},
	})

	require.Len(t, merged, 3)

	// Sorted by product then variation for a stable lock order.
	assert.Equal(t, productA, merged[0].ProductID)
	assert.Nil(t, merged[0].VariationID)
	assert.Equal(t, 1, merged[0].Quantity)

	assert.Equal(t, productA, merged[1].ProductID)
	require.NotNil(t, merged[1].VariationID)
	assert.Equal(t, variation, *merged[1].VariationID)
	assert.Equal(t, 5, merged[1].Quantity)

	assert.Equal(t, productB, merged[2].ProductID)
	assert.Equal(t, 1, merged[2].Quantity)
}

func TestMergeLinesKeepsDistinctVariationsApart(t *testing.T) {
	product := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	varA := uuid.MustParse("44444444-4444-4444-4444-444444444444")
	varB := uuid.MustParse("55555555-5555-5555-5555-555555555555")

	merged := mergeLines([]CheckoutLine{
		{ProductID: product, VariationID: &varA, Quantity: 1},
		{ProductID: product, VariationID: &varB, Quantity: 1},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, varA, *merged[0].VariationID)
	assert.Equal(t, varB, *merged[1].VariationID)
}

func TestShippingFee(t *testing.T) {
	cfg := &config.Config{}
	cfg.Checkout.ShippingFee = 5.0
	cfg.Checkout.FreeShippingThreshold = 100.0

	service := NewOrderService(nil, cfg, nil, nil, nil)

	assert.InDelta(t, 5.00, service.shippingFee(99.99), 0.0001)
	assert.InDelta(t, 0.00, service.shippingFee(100.00), 0.0001)
	assert.InDelta(t, 0.00, service.shippingFee(250.00), 0.0001)
}

func TestAppendNote(t *testing.T) {
	assert.Equal(t, "first", appendNote("", "first"))
	assert.Equal(t, "first\nsecond", appendNote("first", "second"))
}
