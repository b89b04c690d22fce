// internal/handlers/catalog.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// CatalogHandler serves the public storefront: product browsing, taxonomy
// lists and the variation picker. Everything here is unauthenticated and
// backed by the read caches.
type CatalogHandler struct {
	catalogService   *services.CatalogService
	variationService *services.VariationService
	taxonomyService  *services.TaxonomyService
	attributeService *services.AttributeService
}

func NewCatalogHandler(catalogService *services.CatalogService, variationService *services.VariationService,
	taxonomyService *services.TaxonomyService, attributeService *services.AttributeService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:   catalogService,
		variationService: variationService,
		taxonomyService:  taxonomyService,
		attributeService: attributeService,
	}
}

// GET /catalog/products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := parseProductSearchParams(c, params)

	result, err := h.catalogService.ListProducts(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(result.Products, result.Total, params))
}

// GET /catalog/products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.catalogService.GetProductBySlug(slug)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
		"axes":    services.VariationAxes(product.Variations),
	})
}

// GET /catalog/products/:slug/availability
//
// Selection comes in as query parameters, one per attribute axis, e.g.
// ?color=navy&size=m. An empty selection returns the full availability map.
func (h *CatalogHandler) GetAvailability(c *gin.Context) {
	slug := c.Param("slug")

	selection := make(map[string]string)
	for attr, values := range c.Request.URL.Query() {
		if len(values) > 0 && values[0] != "" {
			selection[attr] = values[0]
		}
	}

	result, err := h.variationService.ResolveSelection(slug, selection)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		if strings.Contains(err.Error(), "unknown attribute") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /catalog/products/:slug/related
func (h *CatalogHandler) GetRelatedProducts(c *gin.Context) {
	slug := c.Param("slug")
	limit := parseLimit(c, 8, 24)

	products, err := h.catalogService.GetRelatedProducts(slug, limit)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
	})
}

// GET /catalog/products/featured
func (h *CatalogHandler) GetFeaturedProducts(c *gin.Context) {
	limit := parseLimit(c, 10, 50)

	products, err := h.catalogService.GetFeaturedProducts(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
	})
}

// GET /catalog/products/new-arrivals
func (h *CatalogHandler) GetNewArrivals(c *gin.Context) {
	limit := parseLimit(c, 10, 50)

	products, err := h.catalogService.GetNewArrivals(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
	})
}

// GET /catalog/:kind  (brands, categories, collections)
func (h *CatalogHandler) GetTaxonomy(c *gin.Context) {
	kind, err := services.ParseTaxonomyKind(c.Param("kind"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	entries, err := h.taxonomyService.CachedList(kind)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		kind.Plural(): entries,
	})
}

// GET /catalog/:kind/:slug
func (h *CatalogHandler) GetTaxonomyEntry(c *gin.Context) {
	kind, err := services.ParseTaxonomyKind(c.Param("kind"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	entry, err := h.taxonomyService.GetBySlug(kind, c.Param("slug"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, string(kind))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		string(kind): entry,
	})
}

// GET /catalog/attributes
//
// The attribute dictionary drives the storefront's filter sidebar.
func (h *CatalogHandler) GetAttributes(c *gin.Context) {
	attributes, err := h.attributeService.ListAttributes()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"attributes": attributes,
	})
}

// Helpers shared by the catalog and dashboard product handlers.

func parseProductSearchParams(c *gin.Context, params utils.PaginationParams) services.ProductSearchParams {
	searchParams := services.ProductSearchParams{
		PaginationParams: params,
	}

	searchParams.CategorySlug = c.Query("category")
	searchParams.BrandSlug = c.Query("brand")
	searchParams.CollectionSlug = c.Query("collection")

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseFloat(priceMinStr, 64); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseFloat(priceMaxStr, 64); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}

	if tags := c.Query("tags"); tags != "" {
		searchParams.Tags = strings.Split(tags, ",")
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			searchParams.InStock = &inStock
		}
	}

	if featuredStr := c.Query("featured"); featuredStr != "" {
		if featured, err := strconv.ParseBool(featuredStr); err == nil {
			searchParams.Featured = &featured
		}
	}

	return searchParams
}

func parseLimit(c *gin.Context, def, max int) int {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(def))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > max {
		return def
	}
	return limit
}
