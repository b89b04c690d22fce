// internal/handlers/taxonomy.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// TaxonomyHandler manages brands, categories and collections through one set
// of routes keyed by the :kind segment.
type TaxonomyHandler struct {
	taxonomyService *services.TaxonomyService
}

func NewTaxonomyHandler(taxonomyService *services.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{
		taxonomyService: taxonomyService,
	}
}

// GET /admin/:kind
func (h *TaxonomyHandler) List(c *gin.Context) {
	kind, err := services.ParseTaxonomyKind(c.Param("kind"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	params := utils.GetPaginationParams(c)

	entries, total, err := h.taxonomyService.List(kind, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(entries, total, params))
}

// POST /admin/:kind
func (h *TaxonomyHandler) Create(c *gin.Context) {
	kind, err := services.ParseTaxonomyKind(c.Param("kind"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req services.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	entry, err := h.taxonomyService.Create(kind, &req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    "Created",
		string(kind): entry,
	})
}

// PUT /admin/:kind/:id
func (h *TaxonomyHandler) Update(c *gin.Context) {
	kind, err := services.ParseTaxonomyKind(c.Param("kind"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ID", nil)
		return
	}

	var req services.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	entry, err := h.taxonomyService.Update(kind, id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, string(kind))
			return
		}
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    "Updated",
		string(kind): entry,
	})
}

// DELETE /admin/:kind/:id
func (h *TaxonomyHandler) Delete(c *gin.Context) {
	kind, err := services.ParseTaxonomyKind(c.Param("kind"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ID", nil)
		return
	}

	if err := h.taxonomyService.Delete(kind, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, string(kind))
			return
		}
		if strings.Contains(err.Error(), "still has products") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Deleted",
	})
}
