// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/cache"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// CatalogService owns products: storefront reads (cached) and dashboard CRUD.
type CatalogService struct {
	db             *gorm.DB
	cache          *cache.Registry
	storageService *StorageService
}

type CreateProductRequest struct {
	Name            string                 `json:"name" validate:"required,min=2,max=255"`
	Slug            string                 `json:"slug" validate:"omitempty,slug"`
	Description     string                 `json:"description"`
	BrandID         *uuid.UUID             `json:"brand_id"`
	CategoryID      *uuid.UUID             `json:"category_id"`
	CollectionIDs   []uuid.UUID            `json:"collection_ids,omitempty"`
	Price           float64                `json:"price" validate:"required,gt=0"`
	DiscountPercent float64                `json:"discount_percent" validate:"gte=0,lte=100"`
	Stock           int                    `json:"stock" validate:"gte=0"`
	Images          []string               `json:"images,omitempty"`
	Specifications  map[string]interface{} `json:"specifications,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Status          models.ProductStatus   `json:"status" validate:"omitempty,oneof=draft active archived"`
	Featured        bool                   `json:"featured"`
}

type UpdateProductRequest struct {
	Name            *string                `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Slug            *string                `json:"slug,omitempty" validate:"omitempty,slug"`
	Description     *string                `json:"description,omitempty"`
	BrandID         *uuid.UUID             `json:"brand_id,omitempty"`
	CategoryID      *uuid.UUID             `json:"category_id,omitempty"`
	CollectionIDs   []uuid.UUID            `json:"collection_ids,omitempty"`
	Price           *float64               `json:"price,omitempty" validate:"omitempty,gt=0"`
	DiscountPercent *float64               `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Stock           *int                   `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Images          []string               `json:"images,omitempty"`
	Specifications  map[string]interface{} `json:"specifications,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Status          *models.ProductStatus  `json:"status,omitempty" validate:"omitempty,oneof=draft active archived"`
	Featured        *bool                  `json:"featured,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategorySlug   string
	BrandSlug      string
	CollectionSlug string
	Status         *models.ProductStatus
	PriceMin       *float64
	PriceMax       *float64
	Tags           []string
	InStock        *bool
	Featured       *bool
}

// ProductListResult bundles a page with its total so it can round-trip through
// the cache as one value.
type ProductListResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func NewCatalogService(db *gorm.DB, registry *cache.Registry, storageService *StorageService) *CatalogService {
	return &CatalogService{
		db:             db,
		cache:          registry,
		storageService: storageService,
	}
}

// ListProducts is the cached storefront listing; only active products are
// visible regardless of the Status filter.
func (s *CatalogService) ListProducts(params ProductSearchParams) (*ProductListResult, error) {
	active := models.ProductStatusActive
	params.Status = &active

	key := cache.Key("list", params.Page, params.Limit, params.Sort, params.Order, params.Search,
		params.CategorySlug, params.BrandSlug, params.CollectionSlug,
		deref(params.PriceMin), deref(params.PriceMax), derefBool(params.InStock), derefBool(params.Featured),
		strings.Join(params.Tags, ","))

	value, err := s.cache.GetOrLoad(cache.ResourceProducts, key, func() (interface{}, error) {
		products, total, err := s.SearchProducts(params)
		if err != nil {
			return nil, err
		}
		return &ProductListResult{Products: products, Total: total}, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*ProductListResult), nil
}

// SearchProducts runs the uncached query; the dashboard uses it directly so
// staff always see fresh data and non-active products.
func (s *CatalogService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Preload("Brand").Preload("Category").Preload("Variations", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, created_at ASC")
	})

	if params.Status != nil {
		query = query.Where("products.status = ?", *params.Status)
	}

	if params.CategorySlug != "" {
		categoryID, err := s.resolveSlug(&models.Category{}, "category", params.CategorySlug)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("products.category_id = ?", categoryID)
	}

	if params.BrandSlug != "" {
		brandID, err := s.resolveSlug(&models.Brand{}, "brand", params.BrandSlug)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("products.brand_id = ?", brandID)
	}

	if params.CollectionSlug != "" {
		collectionID, err := s.resolveSlug(&models.Collection{}, "collection", params.CollectionSlug)
		if err != nil {
			return nil, 0, err
		}
		query = query.Joins("JOIN product_collections pc ON pc.product_id = products.id").
			Where("pc.collection_id = ?", collectionID)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("products.price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("products.price <= ?", *params.PriceMax)
	}

	if len(params.Tags) > 0 {
		query = query.Where("products.tags && ?", params.Tags)
	}

	if params.InStock != nil && *params.InStock {
		query = query.Where(
			"products.stock > 0 OR EXISTS (SELECT 1 FROM product_variations pv WHERE pv.product_id = products.id AND pv.stock > 0 AND pv.deleted_at IS NULL)")
	}

	if params.Featured != nil {
		query = query.Where("products.featured = ?", *params.Featured)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting
	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "sales_count", "stock"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)

	// Apply pagination
	query = utils.ApplyPagination(query, params.PaginationParams)

	// Execute query
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetProductBySlug is the cached storefront detail view. View counting happens
// outside the cache so hits still register.
func (s *CatalogService) GetProductBySlug(slug string) (*models.Product, error) {
	key := cache.Key("detail", slug)

	value, err := s.cache.GetOrLoad(cache.ResourceProducts, key, func() (interface{}, error) {
		var product models.Product
		err := s.db.Where("slug = ? AND status = ?", slug, models.ProductStatusActive).
			Preload("Brand").Preload("Category").Preload("Collections").
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
		return &product, nil
	})
	if err != nil {
		return nil, err
	}

	product := value.(*models.Product)
	go s.incrementViewCount(product.ID)

	return product, nil
}

func (s *CatalogService) GetProductByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Brand").Preload("Category").Preload("Collections").
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

// GetRelatedProducts returns active products sharing the category, newest
// first, excluding the product itself.
func (s *CatalogService) GetRelatedProducts(slug string, limit int) ([]models.Product, error) {
	key := cache.Key("related", slug, limit)

	value, err := s.cache.GetOrLoad(cache.ResourceProducts, key, func() (interface{}, error) {
		var product models.Product
		if err := s.db.Select("id", "category_id").Where("slug = ?", slug).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("product not found")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}

		if product.CategoryID == nil {
			return []models.Product{}, nil
		}

		var related []models.Product
		if err := s.db.Where("category_id = ? AND id != ? AND status = ?",
			*product.CategoryID, product.ID, models.ProductStatusActive).
			Order("created_at DESC").
			Limit(limit).
			Preload("Brand").
			Find(&related).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch related products: %w", err)
		}

		return related, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]models.Product), nil
}

func (s *CatalogService) GetFeaturedProducts(limit int) ([]models.Product, error) {
	key := cache.Key("featured", limit)

	value, err := s.cache.GetOrLoad(cache.ResourceProducts, key, func() (interface{}, error) {
		var products []models.Product
		if err := s.db.Where("status = ? AND featured = ?", models.ProductStatusActive, true).
			Order("created_at DESC").
			Limit(limit).
			Preload("Brand").
			Find(&products).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch featured products: %w", err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]models.Product), nil
}

func (s *CatalogService) GetNewArrivals(limit int) ([]models.Product, error) {
	key := cache.Key("new", limit)

	value, err := s.cache.GetOrLoad(cache.ResourceProducts, key, func() (interface{}, error) {
		var products []models.Product
		if err := s.db.Where("status = ?", models.ProductStatusActive).
			Order("created_at DESC").
			Limit(limit).
			Preload("Brand").
			Find(&products).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch new arrivals: %w", err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]models.Product), nil
}

func (s *CatalogService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	productSlug, err := s.resolveProductSlug(req.Slug, req.Name, nil)
	if err != nil {
		return nil, err
	}

	if err := s.verifyTaxonomyRefs(req.BrandID, req.CategoryID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ProductStatusDraft
	}

	// Move staging uploads under the product's final folder before the row is
	// written; failures keep the staging URL and the save continues.
	images := s.storageService.PromoteStagingImages("products", productSlug, req.Images)

	product := &models.Product{
		Name:            req.Name,
		Slug:            productSlug,
		Description:     req.Description,
		BrandID:         req.BrandID,
		CategoryID:      req.CategoryID,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
		Stock:           req.Stock,
		Images:          images,
		Specifications:  models.JSONB(req.Specifications),
		Tags:            req.Tags,
		Status:          status,
		Featured:        req.Featured,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if len(req.CollectionIDs) > 0 {
		if err := s.replaceCollections(product, req.CollectionIDs); err != nil {
			return nil, err
		}
	}

	s.db.Preload("Brand").Preload("Category").Preload("Collections").First(product, product.ID)

	s.cache.Invalidate(cache.ResourceProducts, cache.ResourceBrands, cache.ResourceCategories, cache.ResourceCollections)

	return product, nil
}

func (s *CatalogService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.verifyTaxonomyRefs(req.BrandID, req.CategoryID); err != nil {
		return nil, err
	}

	// Prepare updates
	updates := make(map[string]interface{})
	productSlug := product.Slug

	if req.Slug != nil && *req.Slug != product.Slug {
		resolved, err := s.resolveProductSlug(*req.Slug, "", &product.ID)
		if err != nil {
			return nil, err
		}
		productSlug = resolved
		updates["slug"] = resolved
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.BrandID != nil {
		updates["brand_id"] = *req.BrandID
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Images != nil {
		updates["images"] = s.storageService.PromoteStagingImages("products", productSlug, req.Images)
	}
	if req.Specifications != nil {
		updates["specifications"] = models.JSONB(req.Specifications)
	}
	if req.Tags != nil {
		updates["tags"] = req.Tags
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	if req.CollectionIDs != nil {
		if err := s.replaceCollections(&product, req.CollectionIDs); err != nil {
			return nil, err
		}
	}

	s.db.Preload("Brand").Preload("Category").Preload("Collections").
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).First(&product, id)

	s.cache.Invalidate(cache.ResourceProducts, cache.ResourceBrands, cache.ResourceCategories, cache.ResourceCollections)

	return &product, nil
}

func (s *CatalogService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Products that were sold stay archived so order history keeps resolving.
	var soldCount int64
	if err := s.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND orders.status != ?", id, models.OrderStatusCancelled).
		Count(&soldCount).Error; err != nil {
		return fmt.Errorf("failed to check sales: %w", err)
	}

	if soldCount > 0 {
		return errors.New("cannot delete product with sales, archive it instead")
	}

	// Soft delete
	if err := s.db.Select("Variations").Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	go s.storageService.DeleteEntityImages("products", product.Slug)

	s.cache.Invalidate(cache.ResourceProducts, cache.ResourceBrands, cache.ResourceCategories, cache.ResourceCollections)

	return nil
}

// UpdateStock sets the absolute stock level of the product row or one of its
// variations.
func (s *CatalogService) UpdateStock(productID uuid.UUID, variationID *uuid.UUID, stock int) error {
	if stock < 0 {
		return errors.New("stock cannot be negative")
	}

	if variationID != nil {
		result := s.db.Model(&models.ProductVariation{}).
			Where("id = ? AND product_id = ?", *variationID, productID).
			Update("stock", stock)
		if result.Error != nil {
			return fmt.Errorf("failed to update stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("variation not found")
		}
	} else {
		result := s.db.Model(&models.Product{}).Where("id = ?", productID).Update("stock", stock)
		if result.Error != nil {
			return fmt.Errorf("failed to update stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("product not found")
		}
	}

	s.cache.Invalidate(cache.ResourceProducts)
	return nil
}

// Helper methods

func (s *CatalogService) resolveProductSlug(explicit, name string, excludeID *uuid.UUID) (string, error) {
	base := explicit
	if base == "" {
		base = utils.Slugify(name)
	}

	resolved, err := utils.UniqueSlug(base, func(candidate string) (bool, error) {
		query := s.db.Model(&models.Product{}).Where("slug = ?", candidate)
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
			return "", errors.New("product name does not produce a valid slug")
		}
		return "", err
	}

	return resolved, nil
}

func (s *CatalogService) verifyTaxonomyRefs(brandID, categoryID *uuid.UUID) error {
	if brandID != nil {
		var count int64
		if err := s.db.Model(&models.Brand{}).Where("id = ?", *brandID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return errors.New("brand not found")
		}
	}

	if categoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return errors.New("category not found")
		}
	}

	return nil
}

func (s *CatalogService) replaceCollections(product *models.Product, collectionIDs []uuid.UUID) error {
	var collections []models.Collection
	if len(collectionIDs) > 0 {
		if err := s.db.Find(&collections, collectionIDs).Error; err != nil {
			return fmt.Errorf("failed to load collections: %w", err)
		}
		if len(collections) != len(collectionIDs) {
			return errors.New("collection not found")
		}
	}

	if err := s.db.Model(product).Association("Collections").Replace(collections); err != nil {
		return fmt.Errorf("failed to update collections: %w", err)
	}

	return nil
}

func (s *CatalogService) resolveSlug(model interface{}, name, slugValue string) (uuid.UUID, error) {
	var row struct{ ID uuid.UUID }
	err := s.db.Model(model).Select("id").Where("slug = ?", slugValue).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, errors.New(name + " not found")
		}
		return uuid.Nil, fmt.Errorf("database error: %w", err)
	}
	return row.ID, nil
}

func (s *CatalogService) incrementViewCount(productID uuid.UUID) {
	s.db.Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
