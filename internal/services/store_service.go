// internal/services/store_service.go
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

// StoreService serves the mostly-static storefront data: shipping countries
// and physical store locations.
type StoreService struct {
	db    *gorm.DB
	cache *cache.Registry
}

type StoreLocationRequest struct {
	Name         string                 `json:"name" validate:"required,min=2,max=150"`
	Address      string                 `json:"address" validate:"required,max=255"`
	City         string                 `json:"city" validate:"required,max=100"`
	CountryCode  string                 `json:"country_code" validate:"required,country_code"`
	Phone        string                 `json:"phone,omitempty" validate:"max=50"`
	Email        string                 `json:"email,omitempty" validate:"omitempty,email"`
	Latitude     *float64               `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64               `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	OpeningHours map[string]interface{} `json:"opening_hours,omitempty"`
	Position     int                    `json:"position,omitempty" validate:"gte=0"`
}

func NewStoreService(db *gorm.DB, registry *cache.Registry) *StoreService {
	return &StoreService{
		db:    db,
		cache: registry,
	}
}

// Countries

// EnabledCountries lists the countries checkout accepts, for the storefront.
func (s *StoreService) EnabledCountries() ([]models.Country, error) {
	value, err := s.cache.GetOrLoad(cache.ResourceCountries, "enabled", func() (interface{}, error) {
		var countries []models.Country
		if err := s.db.Where("enabled = ?", true).Order("name ASC").Find(&countries).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch countries: %w", err)
		}
		return countries, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]models.Country), nil
}

// ListCountries lists every country for the dashboard, disabled ones included.
func (s *StoreService) ListCountries() ([]models.Country, error) {
	var countries []models.Country
	if err := s.db.Order("name ASC").Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}

	return countries, nil
}

func (s *StoreService) SetCountryEnabled(code string, enabled bool) (*models.Country, error) {
	var country models.Country
	if err := s.db.Where("code = ?", code).First(&country).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("country not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&country).Update("enabled", enabled).Error; err != nil {
		return nil, fmt.Errorf("failed to update country: %w", err)
	}
	country.Enabled = enabled

	s.cache.Invalidate(cache.ResourceCountries)

	return &country, nil
}

// Store locations

func (s *StoreService) ListLocations() ([]models.StoreLocation, error) {
	value, err := s.cache.GetOrLoad(cache.ResourceStores, "all", func() (interface{}, error) {
		var locations []models.StoreLocation
		if err := s.db.Order("position ASC, name ASC").Find(&locations).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch store locations: %w", err)
		}
		return locations, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]models.StoreLocation), nil
}

func (s *StoreService) GetLocation(id uuid.UUID) (*models.StoreLocation, error) {
	var location models.StoreLocation
	if err := s.db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store location not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &location, nil
}

func (s *StoreService) CreateLocation(req *StoreLocationRequest) (*models.StoreLocation, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.verifyCountryExists(req.CountryCode); err != nil {
		return nil, err
	}

	location := &models.StoreLocation{
		Name:         req.Name,
		Address:      req.Address,
		City:         req.City,
		CountryCode:  req.CountryCode,
		Phone:        req.Phone,
		Email:        req.Email,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		OpeningHours: models.JSONB(req.OpeningHours),
		Position:     req.Position,
	}

	if err := s.db.Create(location).Error; err != nil {
		return nil, fmt.Errorf("failed to create store location: %w", err)
	}

	s.cache.Invalidate(cache.ResourceStores)

	return location, nil
}

// UpdateLocation replaces the location wholesale; the dashboard form always
// submits the full record.
func (s *StoreService) UpdateLocation(id uuid.UUID, req *StoreLocationRequest) (*models.StoreLocation, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	location, err := s.GetLocation(id)
	if err != nil {
		return nil, err
	}

	if err := s.verifyCountryExists(req.CountryCode); err != nil {
		return nil, err
	}

	location.Name = req.Name
	location.Address = req.Address
	location.City = req.City
	location.CountryCode = req.CountryCode
	location.Phone = req.Phone
	location.Email = req.Email
	location.Latitude = req.Latitude
	location.Longitude = req.Longitude
	location.OpeningHours = models.JSONB(req.OpeningHours)
	location.Position = req.Position

	if err := s.db.Save(location).Error; err != nil {
		return nil, fmt.Errorf("failed to update store location: %w", err)
	}

	s.cache.Invalidate(cache.ResourceStores)

	return location, nil
}

func (s *StoreService) DeleteLocation(id uuid.UUID) error {
	result := s.db.Delete(&models.StoreLocation{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete store location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("store location not found")
	}

	s.cache.Invalidate(cache.ResourceStores)

	return nil
}

func (s *StoreService) verifyCountryExists(code string) error {
	var count int64
	if err := s.db.Model(&models.Country{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return errors.New("country not found")
	}

	return nil
}
