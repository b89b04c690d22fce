// internal/services/taxonomy_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/cache"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// TaxonomyKind selects which of the three taxonomy tables an operation runs
// against. Brands, categories and collections share one shape and one service
// instead of three near-identical ones.
type TaxonomyKind string

const (
	TaxonomyBrand      TaxonomyKind = "brand"
	TaxonomyCategory   TaxonomyKind = "category"
	TaxonomyCollection TaxonomyKind = "collection"
)

type TaxonomyService struct {
	db             *gorm.DB
	cache          *cache.Registry
	storageService *StorageService
}

type TaxonomyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	Slug        string `json:"slug" validate:"omitempty,slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// TaxonomyEntry is the uniform read shape for all three kinds, including the
// count of active products attached to the entry.
type TaxonomyEntry struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewTaxonomyService(db *gorm.DB, registry *cache.Registry, storageService *StorageService) *TaxonomyService {
	return &TaxonomyService{
		db:             db,
		cache:          registry,
		storageService: storageService,
	}
}

// ParseTaxonomyKind accepts both the singular kind name and the plural route
// segment ("brand" and "brands").
func ParseTaxonomyKind(raw string) (TaxonomyKind, error) {
	switch raw {
	case "brand", "brands":
		return TaxonomyBrand, nil
	case "category", "categories":
		return TaxonomyCategory, nil
	case "collection", "collections":
		return TaxonomyCollection, nil
	}
	return "", fmt.Errorf("unknown taxonomy kind %q", raw)
}

// Plural is the table name, route segment and response key for the kind.
func (k TaxonomyKind) Plural() string {
	switch k {
	case TaxonomyBrand:
		return "brands"
	case TaxonomyCategory:
		return "categories"
	case TaxonomyCollection:
		return "collections"
	}
	return ""
}

func (k TaxonomyKind) table() string {
	return k.Plural()
}

// Folder is the storage prefix entity images are promoted into.
func (k TaxonomyKind) Folder() string {
	return k.Plural()
}

func (k TaxonomyKind) cacheResource() string {
	switch k {
	case TaxonomyBrand:
		return cache.ResourceBrands
	case TaxonomyCategory:
		return cache.ResourceCategories
	case TaxonomyCollection:
		return cache.ResourceCollections
	}
	return ""
}

// CachedList is the storefront list: every entry with product counts, ordered
// by name. Taxonomy tables are small, so no pagination here.
func (s *TaxonomyService) CachedList(kind TaxonomyKind) ([]TaxonomyEntry, error) {
	value, err := s.cache.GetOrLoad(kind.cacheResource(), "all", func() (interface{}, error) {
		entries, _, err := s.List(kind, utils.PaginationParams{Page: 1, Limit: 100, Sort: "name", Order: "asc"})
		return entries, err
	})
	if err != nil {
		return nil, err
	}

	return value.([]TaxonomyEntry), nil
}

// List is the uncached, paginated dashboard view.
func (s *TaxonomyService) List(kind TaxonomyKind, params utils.PaginationParams) ([]TaxonomyEntry, int64, error) {
	table := kind.table()
	query := s.countQuery(kind)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER("+table+".name) LIKE ?", searchTerm)
	}

	var total int64
	if err := s.db.Table(table).Where(table+".deleted_at IS NULL").
		Where(searchClause(table, params.Search), searchArgs(params.Search)...).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", kind.Plural(), err)
	}

	allowedSortFields := []string{"name", "created_at", "product_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var entries []TaxonomyEntry
	if err := query.Scan(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", kind.Plural(), err)
	}

	return entries, total, nil
}

func (s *TaxonomyService) GetBySlug(kind TaxonomyKind, slugValue string) (*TaxonomyEntry, error) {
	var entry TaxonomyEntry
	err := s.countQuery(kind).Where(kind.table()+".slug = ?", slugValue).Scan(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if entry.ID == uuid.Nil {
		return nil, errors.New(string(kind) + " not found")
	}

	return &entry, nil
}

func (s *TaxonomyService) Create(kind TaxonomyKind, req *TaxonomyRequest) (*TaxonomyEntry, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	slugValue, err := s.resolveSlug(kind, req.Slug, req.Name, nil)
	if err != nil {
		return nil, err
	}

	image := s.promoteImage(kind, slugValue, req.Image)

	var entry *TaxonomyEntry
	switch kind {
	case TaxonomyBrand:
		m := &models.Brand{Name: req.Name, Slug: slugValue, Description: req.Description, Image: image}
		if err := s.db.Create(m).Error; err != nil {
			return nil, fmt.Errorf("failed to create brand: %w", err)
		}
		entry = entryOf(m.ID, m.Name, m.Slug, m.Description, m.Image, m.CreatedAt, m.UpdatedAt)
	case TaxonomyCategory:
		m := &models.Category{Name: req.Name, Slug: slugValue, Description: req.Description, Image: image}
		if err := s.db.Create(m).Error; err != nil {
			return nil, fmt.Errorf("failed to create category: %w", err)
		}
		entry = entryOf(m.ID, m.Name, m.Slug, m.Description, m.Image, m.CreatedAt, m.UpdatedAt)
	case TaxonomyCollection:
		m := &models.Collection{Name: req.Name, Slug: slugValue, Description: req.Description, Image: image}
		if err := s.db.Create(m).Error; err != nil {
			return nil, fmt.Errorf("failed to create collection: %w", err)
		}
		entry = entryOf(m.ID, m.Name, m.Slug, m.Description, m.Image, m.CreatedAt, m.UpdatedAt)
	}

	s.cache.Invalidate(kind.cacheResource(), cache.ResourceProducts)

	return entry, nil
}

func (s *TaxonomyService) Update(kind TaxonomyKind, id uuid.UUID, req *TaxonomyRequest) (*TaxonomyEntry, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	current, err := s.getByID(kind, id)
	if err != nil {
		return nil, err
	}

	slugValue := current.Slug
	if req.Slug != "" && req.Slug != current.Slug {
		slugValue, err = s.resolveSlug(kind, req.Slug, req.Name, &id)
		if err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"slug":        slugValue,
		"description": req.Description,
		"image":       s.promoteImage(kind, slugValue, req.Image),
		"updated_at":  time.Now(),
	}

	if err := s.db.Table(kind.table()).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}

	s.cache.Invalidate(kind.cacheResource(), cache.ResourceProducts)

	return s.getByID(kind, id)
}

// Delete refuses to remove an entry that still has products attached; the
// dashboard must reassign or empty it first.
func (s *TaxonomyService) Delete(kind TaxonomyKind, id uuid.UUID) error {
	current, err := s.getByID(kind, id)
	if err != nil {
		return err
	}

	count, err := s.productCount(kind, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New(string(kind) + " still has products attached")
	}

	switch kind {
	case TaxonomyBrand:
		err = s.db.Delete(&models.Brand{}, id).Error
	case TaxonomyCategory:
		err = s.db.Delete(&models.Category{}, id).Error
	case TaxonomyCollection:
		err = s.db.Delete(&models.Collection{}, id).Error
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}

	go s.storageService.DeleteEntityImages(kind.Folder(), current.Slug)

	s.cache.Invalidate(kind.cacheResource(), cache.ResourceProducts)

	return nil
}

// Helper methods

func (s *TaxonomyService) countQuery(kind TaxonomyKind) *gorm.DB {
	table := kind.table()
	selectCols := table + ".id, " + table + ".name, " + table + ".slug, " + table + ".description, " +
		table + ".image, " + table + ".created_at, " + table + ".updated_at, COUNT(products.id) AS product_count"

	query := s.db.Table(table).Select(selectCols).Where(table + ".deleted_at IS NULL")

	switch kind {
	case TaxonomyBrand:
		query = query.Joins("LEFT JOIN products ON products.brand_id = brands.id AND products.deleted_at IS NULL AND products.status = ?", models.ProductStatusActive)
	case TaxonomyCategory:
		query = query.Joins("LEFT JOIN products ON products.category_id = categories.id AND products.deleted_at IS NULL AND products.status = ?", models.ProductStatusActive)
	case TaxonomyCollection:
		query = query.Joins("LEFT JOIN product_collections pc ON pc.collection_id = collections.id").
			Joins("LEFT JOIN products ON products.id = pc.product_id AND products.deleted_at IS NULL AND products.status = ?", models.ProductStatusActive)
	}

	return query.Group(table + ".id")
}

func (s *TaxonomyService) getByID(kind TaxonomyKind, id uuid.UUID) (*TaxonomyEntry, error) {
	var entry TaxonomyEntry
	err := s.countQuery(kind).Where(kind.table()+".id = ?", id).Scan(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if entry.ID == uuid.Nil {
		return nil, errors.New(string(kind) + " not found")
	}

	return &entry, nil
}

func (s *TaxonomyService) productCount(kind TaxonomyKind, id uuid.UUID) (int64, error) {
	var count int64
	var err error

	switch kind {
	case TaxonomyBrand:
		err = s.db.Model(&models.Product{}).Where("brand_id = ?", id).Count(&count).Error
	case TaxonomyCategory:
		err = s.db.Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error
	case TaxonomyCollection:
		err = s.db.Table("product_collections").Where("collection_id = ?", id).Count(&count).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

func (s *TaxonomyService) resolveSlug(kind TaxonomyKind, explicit, name string, excludeID *uuid.UUID) (string, error) {
	base := explicit
	if base == "" {
		base = utils.Slugify(name)
	}

	resolved, err := utils.UniqueSlug(base, func(candidate string) (bool, error) {
		query := s.db.Table(kind.table()).Where("slug = ? AND deleted_at IS NULL", candidate)
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
			return "", errors.New(string(kind) + " name does not produce a valid slug")
		}
		return "", err
	}

	return resolved, nil
}

func (s *TaxonomyService) promoteImage(kind TaxonomyKind, slugValue, image string) string {
	if image == "" {
		return ""
	}
	promoted := s.storageService.PromoteStagingImages(kind.Folder(), slugValue, []string{image})
	return promoted[0]
}

func entryOf(id uuid.UUID, name, slugValue, description, image string, createdAt, updatedAt time.Time) *TaxonomyEntry {
	return &TaxonomyEntry{
		ID:          id,
		Name:        name,
		Slug:        slugValue,
		Description: description,
		Image:       image,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func searchClause(table, search string) string {
	if search == "" {
		return "1 = 1"
	}
	return "LOWER(" + table + ".name) LIKE ?"
}

func searchArgs(search string) []interface{} {
	if search == "" {
		return nil
	}
	return []interface{}{"%" + strings.ToLower(search) + "%"}
}
