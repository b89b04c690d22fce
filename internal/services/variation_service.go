// internal/services/variation_service.go
package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/cache"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// VariationService manages product variations and answers the storefront's
// "which combinations can I still pick" question.
type VariationService struct {
	db    *gorm.DB
	cache *cache.Registry
}

type VariationRequest struct {
	SKU             string            `json:"sku" validate:"omitempty,max=100"`
	Price           *float64          `json:"price" validate:"omitempty,gt=0"`
	DiscountPercent *float64          `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	Stock           int               `json:"stock" validate:"gte=0"`
	Attributes      map[string]string `json:"attributes" validate:"required,min=1"`
	Image           string            `json:"image,omitempty"`
	Position        int               `json:"position"`
}

// SelectionResult describes a (possibly partial) attribute selection against a
// product: the matched variation when the selection is complete, and per-value
// availability flags for every axis the product's variations span.
type SelectionResult struct {
	Variation    *models.ProductVariation   `json:"variation,omitempty"`
	Complete     bool                       `json:"complete"`
	Axes         map[string][]string        `json:"axes"`
	Availability map[string]map[string]bool `json:"availability"`
}

func NewVariationService(db *gorm.DB, registry *cache.Registry) *VariationService {
	return &VariationService{db: db, cache: registry}
}

// MatchVariation finds the variation whose attribute set equals the selection
// exactly. Subset or superset selections do not match.
func MatchVariation(variations []models.ProductVariation, selection map[string]string) *models.ProductVariation {
	for i := range variations {
		attrs := variations[i].AttributeMap()
		if len(attrs) != len(selection) {
			continue
		}

		matched := true
		for attr, value := range selection {
			if attrs[attr] != value {
				matched = false
				break
			}
		}
		if matched {
			return &variations[i]
		}
	}
	return nil
}

// VariationAxes collects the attribute axes a product's variations span, with
// value slugs in first-seen order.
func VariationAxes(variations []models.ProductVariation) map[string][]string {
	axes := make(map[string][]string)
	for i := range variations {
		for attr, value := range variations[i].AttributeMap() {
			values := axes[attr]
			seen := false
			for _, v := range values {
				if v == value {
					seen = true
					break
				}
			}
			if !seen {
				axes[attr] = append(values, value)
			}
		}
	}
	return axes
}

// Availability flags, for every axis value, whether picking it together with
// the rest of the selection (the value's own axis excluded) reaches at least
// one in-stock variation.
func Availability(variations []models.ProductVariation, selection map[string]string) map[string]map[string]bool {
	axes := VariationAxes(variations)
	result := make(map[string]map[string]bool, len(axes))

	for axis, values := range axes {
		result[axis] = make(map[string]bool, len(values))
		for _, value := range values {
			result[axis][value] = reachable(variations, selection, axis, value)
		}
	}

	return result
}

func reachable(variations []models.ProductVariation, selection map[string]string, axis, value string) bool {
	for i := range variations {
		if variations[i].Stock <= 0 {
			continue
		}

		attrs := variations[i].AttributeMap()
		if attrs[axis] != value {
			continue
		}

		compatible := true
		for attr, selected := range selection {
			if attr == axis {
				continue
			}
			if attrs[attr] != selected {
				compatible = false
				break
			}
		}
		if compatible {
			return true
		}
	}
	return false
}

// ResolveSelection loads the product by slug and evaluates the selection
// against its variations.
func (s *VariationService) ResolveSelection(productSlug string, selection map[string]string) (*SelectionResult, error) {
	var product models.Product
	err := s.db.Where("slug = ? AND status = ?", productSlug, models.ProductStatusActive).
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	axes := VariationAxes(product.Variations)
	for attr := range selection {
		if _, ok := axes[attr]; !ok {
			return nil, fmt.Errorf("unknown attribute %q in selection", attr)
		}
	}

	result := &SelectionResult{
		Axes:         axes,
		Availability: Availability(product.Variations, selection),
		Complete:     len(selection) == len(axes) && len(axes) > 0,
	}

	if result.Complete {
		result.Variation = MatchVariation(product.Variations, selection)
	}

	return result, nil
}

func (s *VariationService) CreateVariation(productID uuid.UUID, req *VariationRequest) (*models.ProductVariation, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.Preload("Variations").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.validateAttributeSet(req.Attributes); err != nil {
		return nil, err
	}

	if existing := MatchVariation(product.Variations, req.Attributes); existing != nil {
		return nil, errors.New("variation with this attribute set already exists")
	}

	if err := s.checkSKU(req.SKU, nil); err != nil {
		return nil, err
	}

	variation := &models.ProductVariation{
		ProductID:       productID,
		SKU:             req.SKU,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
		Stock:           req.Stock,
		Attributes:      attributesToJSONB(req.Attributes),
		Image:           req.Image,
		Position:        req.Position,
	}

	if err := s.db.Create(variation).Error; err != nil {
		return nil, fmt.Errorf("failed to create variation: %w", err)
	}

	s.cache.Invalidate(cache.ResourceProducts)

	return variation, nil
}

func (s *VariationService) UpdateVariation(productID, variationID uuid.UUID, req *VariationRequest) (*models.ProductVariation, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var variation models.ProductVariation
	if err := s.db.Where("id = ? AND product_id = ?", variationID, productID).First(&variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("variation not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.validateAttributeSet(req.Attributes); err != nil {
		return nil, err
	}

	var siblings []models.ProductVariation
	if err := s.db.Where("product_id = ? AND id != ?", productID, variationID).Find(&siblings).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing := MatchVariation(siblings, req.Attributes); existing != nil {
		return nil, errors.New("variation with this attribute set already exists")
	}

	if err := s.checkSKU(req.SKU, &variationID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"sku":              req.SKU,
		"price":            req.Price,
		"discount_percent": req.DiscountPercent,
		"stock":            req.Stock,
		"attributes":       attributesToJSONB(req.Attributes),
		"image":            req.Image,
		"position":         req.Position,
	}

	if err := s.db.Model(&variation).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update variation: %w", err)
	}

	s.cache.Invalidate(cache.ResourceProducts)

	return &variation, nil
}

func (s *VariationService) DeleteVariation(productID, variationID uuid.UUID) error {
	result := s.db.Where("id = ? AND product_id = ?", variationID, productID).
		Delete(&models.ProductVariation{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete variation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("variation not found")
	}

	s.cache.Invalidate(cache.ResourceProducts)

	return nil
}

// validateAttributeSet checks every attribute/value pair against the
// dictionary, so variations can never carry unknown attributes.
func (s *VariationService) validateAttributeSet(attributes map[string]string) error {
	if len(attributes) == 0 {
		return errors.New("variation requires at least one attribute")
	}

	dictionary, err := s.attributeDictionary()
	if err != nil {
		return err
	}

	// Deterministic error ordering
	keys := make([]string, 0, len(attributes))
	for attr := range attributes {
		keys = append(keys, attr)
	}
	sort.Strings(keys)

	for _, attr := range keys {
		values, ok := dictionary[attr]
		if !ok {
			return fmt.Errorf("unknown attribute %q", attr)
		}
		if !values[attributes[attr]] {
			return fmt.Errorf("unknown value %q for attribute %q", attributes[attr], attr)
		}
	}

	return nil
}

func (s *VariationService) attributeDictionary() (map[string]map[string]bool, error) {
	value, err := s.cache.GetOrLoad(cache.ResourceAttributes, "dictionary", func() (interface{}, error) {
		var attrs []models.ProductAttribute
		if err := s.db.Preload("Values").Find(&attrs).Error; err != nil {
			return nil, fmt.Errorf("failed to load attributes: %w", err)
		}

		dictionary := make(map[string]map[string]bool, len(attrs))
		for i := range attrs {
			dictionary[attrs[i].Slug] = attrs[i].ValueSlugSet()
		}
		return dictionary, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(map[string]map[string]bool), nil
}

func (s *VariationService) checkSKU(sku string, excludeID *uuid.UUID) error {
	if sku == "" {
		return nil
	}

	query := s.db.Model(&models.ProductVariation{}).Where("sku = ?", sku)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check sku: %w", err)
	}
	if count > 0 {
		return errors.New("sku already exists")
	}

	return nil
}

func attributesToJSONB(attributes map[string]string) models.JSONB {
	out := make(models.JSONB, len(attributes))
	for attr, value := range attributes {
		out[attr] = value
	}
	return out
}
