// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// CartService stores guest carts keyed by opaque token. Items hold references
// and quantities only; every read re-prices against the live catalog.
type CartService struct {
	db  *gorm.DB
	ttl time.Duration
}

type AddItemRequest struct {
	ProductID   uuid.UUID  `json:"product_id" validate:"required"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity" validate:"required,min=1"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// PricedCartLine is one cart row with current prices and availability.
type PricedCartLine struct {
	ItemID          uuid.UUID         `json:"item_id"`
	ProductID       uuid.UUID         `json:"product_id"`
	VariationID     *uuid.UUID        `json:"variation_id,omitempty"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	SKU             string            `json:"sku,omitempty"`
	Image           string            `json:"image,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	UnitPrice       float64           `json:"unit_price"`
	DiscountPercent float64           `json:"discount_percent"`
	FinalUnitPrice  float64           `json:"final_unit_price"`
	Quantity        int               `json:"quantity"`
	LineTotal       float64           `json:"line_total"`
	Available       bool              `json:"available"`
	AvailableStock  int               `json:"available_stock"`
}

type PricedCart struct {
	Token         string           `json:"token"`
	Lines         []PricedCartLine `json:"lines"`
	ItemCount     int              `json:"item_count"`
	Subtotal      float64          `json:"subtotal"`
	DiscountTotal float64          `json:"discount_total"`
	Total         float64          `json:"total"`
	ExpiresAt     time.Time        `json:"expires_at"`
}

func NewCartService(db *gorm.DB, ttlHours int) *CartService {
	return &CartService{
		db:  db,
		ttl: time.Duration(ttlHours) * time.Hour,
	}
}

// PriceCart computes line prices and cart totals from loaded items. Lines with
// a missing or non-active product are flagged unavailable and excluded from
// the totals.
func PriceCart(items []models.CartItem) ([]PricedCartLine, float64, float64, float64) {
	lines := make([]PricedCartLine, 0, len(items))
	var subtotal, total float64

	for i := range items {
		item := &items[i]
		line := PricedCartLine{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		}

		product := item.Product
		if product == nil {
			line.Available = false
			lines = append(lines, line)
			continue
		}

		line.Name = product.Name
		line.Slug = product.Slug
		if len(product.Images) > 0 {
			line.Image = product.Images[0]
		}

		unit := product.Price
		discount := product.DiscountPercent
		stock := product.Stock

		if item.Variation != nil {
			unit = item.Variation.UnitPrice(product)
			discount = item.Variation.Discount(product)
			stock = item.Variation.Stock
			line.SKU = item.Variation.SKU
			line.Attributes = item.Variation.AttributeMap()
			if item.Variation.Image != "" {
				line.Image = item.Variation.Image
			}
		}

		line.UnitPrice = models.RoundCents(unit)
		line.DiscountPercent = discount
		line.FinalUnitPrice = models.DiscountedPrice(unit, discount)
		line.LineTotal = models.RoundCents(line.FinalUnitPrice * float64(item.Quantity))
		line.AvailableStock = stock
		line.Available = product.Status == models.ProductStatusActive && stock >= item.Quantity

		if line.Available {
			subtotal += models.RoundCents(line.UnitPrice * float64(item.Quantity))
			total += line.LineTotal
		}

		lines = append(lines, line)
	}

	subtotal = models.RoundCents(subtotal)
	total = models.RoundCents(total)
	discountTotal := models.RoundCents(subtotal - total)

	return lines, subtotal, discountTotal, total
}

func (s *CartService) CreateCart() (*models.Cart, error) {
	token, err := utils.GenerateCartToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cart token: %w", err)
	}

	cart := &models.Cart{
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.db.Create(cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

func (s *CartService) GetCart(token string) (*PricedCart, error) {
	cart, err := s.loadCart(token)
	if err != nil {
		return nil, err
	}

	lines, subtotal, discountTotal, total := PriceCart(cart.Items)

	itemCount := 0
	for _, line := range lines {
		itemCount += line.Quantity
	}

	return &PricedCart{
		Token:         cart.Token,
		Lines:         lines,
		ItemCount:     itemCount,
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		Total:         total,
		ExpiresAt:     cart.ExpiresAt,
	}, nil
}

func (s *CartService) AddItem(token string, req *AddItemRequest) (*PricedCart, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.loadCart(token)
	if err != nil {
		return nil, err
	}

	product, variation, err := s.resolveLine(req.ProductID, req.VariationID)
	if err != nil {
		return nil, err
	}

	// Merge with an existing line for the same product+variation
	var existing *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].SameLine(req.ProductID, req.VariationID) {
			existing = &cart.Items[i]
			break
		}
	}

	newQuantity := req.Quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}

	if stock := stockFor(product, variation); stock < newQuantity {
		return nil, errors.New("insufficient stock")
	}

	if existing != nil {
		if err := s.db.Model(existing).Update("quantity", newQuantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := &models.CartItem{
			CartID:      cart.ID,
			ProductID:   req.ProductID,
			VariationID: req.VariationID,
			Quantity:    req.Quantity,
		}
		if err := s.db.Create(item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	s.touch(cart)

	return s.GetCart(token)
}

func (s *CartService) UpdateItem(token string, itemID uuid.UUID, req *UpdateItemRequest) (*PricedCart, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.loadCart(token)
	if err != nil {
		return nil, err
	}

	var item *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			item = &cart.Items[i]
			break
		}
	}
	if item == nil {
		return nil, errors.New("cart item not found")
	}

	// Quantity zero removes the line
	if req.Quantity == 0 {
		if err := s.db.Delete(item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		s.touch(cart)
		return s.GetCart(token)
	}

	product, variation, err := s.resolveLine(item.ProductID, item.VariationID)
	if err != nil {
		return nil, err
	}

	if stock := stockFor(product, variation); stock < req.Quantity {
		return nil, errors.New("insufficient stock")
	}

	if err := s.db.Model(item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.touch(cart)

	return s.GetCart(token)
}

func (s *CartService) RemoveItem(token string, itemID uuid.UUID) (*PricedCart, error) {
	cart, err := s.loadCart(token)
	if err != nil {
		return nil, err
	}

	result := s.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errors.New("cart item not found")
	}

	s.touch(cart)

	return s.GetCart(token)
}

func (s *CartService) ClearCart(token string) error {
	cart, err := s.loadCart(token)
	if err != nil {
		return err
	}

	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// StartJanitor reaps expired carts on a fixed interval until stop is closed.
func (s *CartService) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.reapExpired()
			case <-stop:
				return
			}
		}
	}()
}

func (s *CartService) reapExpired() {
	cutoff := time.Now()

	err := s.db.Exec(
		"DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE expires_at < ?)", cutoff,
	).Error
	if err != nil {
		logrus.WithError(err).Warn("Failed to reap expired cart items")
		return
	}

	result := s.db.Exec("DELETE FROM carts WHERE expires_at < ?", cutoff)
	if result.Error != nil {
		logrus.WithError(result.Error).Warn("Failed to reap expired carts")
		return
	}

	if result.RowsAffected > 0 {
		logrus.WithField("count", result.RowsAffected).Info("Reaped expired carts")
	}
}

// Helper methods

func (s *CartService) loadCart(token string) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Where("token = ?", token).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Variation").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("cart not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if cart.Expired(time.Now()) {
		return nil, errors.New("cart has expired")
	}

	return &cart, nil
}

// resolveLine validates that the product is purchasable and that the variation
// requirement matches: products with variations need one, products without
// must not carry one.
func (s *CartService) resolveLine(productID uuid.UUID, variationID *uuid.UUID) (*models.Product, *models.ProductVariation, error) {
	var product models.Product
	err := s.db.Preload("Variations").First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("product not found")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if product.Status != models.ProductStatusActive {
		return nil, nil, errors.New("product is not available")
	}

	if product.HasVariations() && variationID == nil {
		return nil, nil, errors.New("variation is required for this product")
	}
	if !product.HasVariations() && variationID != nil {
		return nil, nil, errors.New("product has no variations")
	}

	if variationID == nil {
		return &product, nil, nil
	}

	for i := range product.Variations {
		if product.Variations[i].ID == *variationID {
			return &product, &product.Variations[i], nil
		}
	}

	return nil, nil, errors.New("variation not found")
}

// touch extends the cart's lifetime on every interaction.
func (s *CartService) touch(cart *models.Cart) {
	s.db.Model(cart).Update("expires_at", time.Now().Add(s.ttl))
}

func stockFor(product *models.Product, variation *models.ProductVariation) int {
	if variation != nil {
		return variation.Stock
	}
	return product.Stock
}
