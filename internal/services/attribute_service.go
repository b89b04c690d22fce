// internal/services/attribute_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/cache"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// AttributeService manages the attribute dictionary variations are validated
// against. Attributes and values in use by a variation cannot be removed.
type AttributeService struct {
	db    *gorm.DB
	cache *cache.Registry
}

type AttributeRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
	Position int    `json:"position"`
}

type AttributeValueRequest struct {
	Value    string `json:"value" validate:"required,min=1,max=100"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
	Position int    `json:"position"`
}

func NewAttributeService(db *gorm.DB, registry *cache.Registry) *AttributeService {
	return &AttributeService{db: db, cache: registry}
}

// ListAttributes returns the full dictionary with values, cached for the
// storefront's variation pickers.
func (s *AttributeService) ListAttributes() ([]models.ProductAttribute, error) {
	value, err := s.cache.GetOrLoad(cache.ResourceAttributes, "list", func() (interface{}, error) {
		var attributes []models.ProductAttribute
		err := s.db.Order("position ASC, created_at ASC").
			Preload("Values", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC, created_at ASC")
			}).
			Find(&attributes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to fetch attributes: %w", err)
		}
		return attributes, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]models.ProductAttribute), nil
}

func (s *AttributeService) GetAttribute(id uuid.UUID) (*models.ProductAttribute, error) {
	var attribute models.ProductAttribute
	err := s.db.Preload("Values", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, created_at ASC")
	}).First(&attribute, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("attribute not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &attribute, nil
}

func (s *AttributeService) CreateAttribute(req *AttributeRequest) (*models.ProductAttribute, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	slugValue, err := s.resolveAttributeSlug(req.Slug, req.Name, nil)
	if err != nil {
		return nil, err
	}

	attribute := &models.ProductAttribute{
		Name:     req.Name,
		Slug:     slugValue,
		Position: req.Position,
	}

	if err := s.db.Create(attribute).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}

	s.cache.Invalidate(cache.ResourceAttributes)

	return attribute, nil
}

func (s *AttributeService) UpdateAttribute(id uuid.UUID, req *AttributeRequest) (*models.ProductAttribute, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attribute, err := s.GetAttribute(id)
	if err != nil {
		return nil, err
	}

	slugValue := attribute.Slug
	if req.Slug != "" && req.Slug != attribute.Slug {
		// Renaming the slug would orphan variations that reference it.
		inUse, err := s.attributeInUse(attribute.Slug)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, errors.New("attribute is in use by variations, slug cannot change")
		}

		slugValue, err = s.resolveAttributeSlug(req.Slug, req.Name, &id)
		if err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":     req.Name,
		"slug":     slugValue,
		"position": req.Position,
	}

	if err := s.db.Model(attribute).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update attribute: %w", err)
	}

	s.cache.Invalidate(cache.ResourceAttributes)

	return s.GetAttribute(id)
}

func (s *AttributeService) DeleteAttribute(id uuid.UUID) error {
	attribute, err := s.GetAttribute(id)
	if err != nil {
		return err
	}

	inUse, err := s.attributeInUse(attribute.Slug)
	if err != nil {
		return err
	}
	if inUse {
		return errors.New("attribute is in use by variations")
	}

	if err := s.db.Select("Values").Delete(attribute).Error; err != nil {
		return fmt.Errorf("failed to delete attribute: %w", err)
	}

	s.cache.Invalidate(cache.ResourceAttributes)

	return nil
}

func (s *AttributeService) AddValue(attributeID uuid.UUID, req *AttributeValueRequest) (*models.AttributeValue, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attribute, err := s.GetAttribute(attributeID)
	if err != nil {
		return nil, err
	}

	slugValue, err := s.resolveValueSlug(attributeID, req.Slug, req.Value, nil)
	if err != nil {
		return nil, err
	}

	value := &models.AttributeValue{
		AttributeID: attribute.ID,
		Value:       req.Value,
		Slug:        slugValue,
		Position:    req.Position,
	}

	if err := s.db.Create(value).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute value: %w", err)
	}

	s.cache.Invalidate(cache.ResourceAttributes)

	return value, nil
}

func (s *AttributeService) UpdateValue(attributeID, valueID uuid.UUID, req *AttributeValueRequest) (*models.AttributeValue, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attribute, err := s.GetAttribute(attributeID)
	if err != nil {
		return nil, err
	}

	var value models.AttributeValue
	if err := s.db.Where("id = ? AND attribute_id = ?", valueID, attributeID).First(&value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("attribute value not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	slugValue := value.Slug
	if req.Slug != "" && req.Slug != value.Slug {
		inUse, err := s.valueInUse(attribute.Slug, value.Slug)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, errors.New("attribute value is in use by variations, slug cannot change")
		}

		slugValue, err = s.resolveValueSlug(attributeID, req.Slug, req.Value, &valueID)
		if err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"value":    req.Value,
		"slug":     slugValue,
		"position": req.Position,
	}

	if err := s.db.Model(&value).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update attribute value: %w", err)
	}

	s.cache.Invalidate(cache.ResourceAttributes)

	return &value, nil
}

func (s *AttributeService) DeleteValue(attributeID, valueID uuid.UUID) error {
	attribute, err := s.GetAttribute(attributeID)
	if err != nil {
		return err
	}

	var value models.AttributeValue
	if err := s.db.Where("id = ? AND attribute_id = ?", valueID, attributeID).First(&value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("attribute value not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	inUse, err := s.valueInUse(attribute.Slug, value.Slug)
	if err != nil {
		return err
	}
	if inUse {
		return errors.New("attribute value is in use by variations")
	}

	if err := s.db.Delete(&value).Error; err != nil {
		return fmt.Errorf("failed to delete attribute value: %w", err)
	}

	s.cache.Invalidate(cache.ResourceAttributes)

	return nil
}

// Helper methods

func (s *AttributeService) attributeInUse(attributeSlug string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProductVariation{}).
		Where("attributes -> ? IS NOT NULL", attributeSlug).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check attribute usage: %w", err)
	}
	return count > 0, nil
}

func (s *AttributeService) valueInUse(attributeSlug, valueSlug string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProductVariation{}).
		Where("attributes ->> ? = ?", attributeSlug, valueSlug).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check value usage: %w", err)
	}
	return count > 0, nil
}

func (s *AttributeService) resolveAttributeSlug(explicit, name string, excludeID *uuid.UUID) (string, error) {
	base := explicit
	if base == "" {
		base = utils.Slugify(name)
	}

	resolved, err := utils.UniqueSlug(base, func(candidate string) (bool, error) {
		query := s.db.Model(&models.ProductAttribute{}).Where("slug = ?", candidate)
		if excludeID != nil {
			query = query.Where("id != ?", *excludeID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return false, fmt.Errorf("failed to check slug: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		if errors.Is(err, utils.ErrEmptySlug) {
			return "", errors.New("attribute name does not produce a valid slug")
		}
		return "", err
	}

	return resolved, nil
}

func (s *AttributeService) resolveValueSlug(attributeID uuid.UUID, explicit, value string, excludeID *uuid.UUID) (string, error) {
	base := explicit
	if base == "" {
		base = utils.Slugify(value)
	}

	resolved, err := utils.UniqueSlug(base, func(candidate string) (bool, error) {
		query := s.db.Model(&models.AttributeValue{}).
			Where("attribute_id = ? AND slug = ?", attributeID, candidate)
		if excludeID != nil {
			query = query.Where("id != ?", *excludeID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return false, fmt.Errorf("failed to check slug: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		if errors.Is(err, utils.ErrEmptySlug) {
			return "", errors.New("attribute value does not produce a valid slug")
		}
		return "", err
	}

	return resolved, nil
}
