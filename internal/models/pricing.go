// internal/models/pricing.go
package models

import "math"

// DiscountedPrice applies a percentage discount to a price and rounds the
// result to cents. Discounts outside [0,100] are clamped.
func DiscountedPrice(price, discountPercent float64) float64 {
	if discountPercent <= 0 {
		return RoundCents(price)
	}
	if discountPercent >= 100 {
		return 0
	}
	return RoundCents(price * (100 - discountPercent) / 100)
}

// RoundCents rounds a monetary amount to two decimal places.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
