// internal/handlers/store.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type StoreHandler struct {
	storeService *services.StoreService
}

func NewStoreHandler(storeService *services.StoreService) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
	}
}

// GET /stores
func (h *StoreHandler) GetStores(c *gin.Context) {
	locations, err := h.storeService.ListLocations()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stores": locations,
	})
}

// GET /countries
func (h *StoreHandler) GetCountries(c *gin.Context) {
	countries, err := h.storeService.EnabledCountries()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"countries": countries,
	})
}

// GET /admin/countries
func (h *StoreHandler) ListCountries(c *gin.Context) {
	countries, err := h.storeService.ListCountries()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"countries": countries,
	})
}

// PUT /admin/countries/:code
func (h *StoreHandler) SetCountryEnabled(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))

	var req struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	country, err := h.storeService.SetCountryEnabled(code, *req.Enabled)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Country")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Country updated",
		"country": country,
	})
}

// GET /admin/stores
func (h *StoreHandler) GetLocations(c *gin.Context) {
	locations, err := h.storeService.ListLocations()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stores": locations,
	})
}

// GET /admin/stores/:id
func (h *StoreHandler) GetLocation(c *gin.Context) {
	idStr := c.Param("id")
	locationID, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid store ID", nil)
		return
	}

	location, err := h.storeService.GetLocation(locationID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Store")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"store": location,
	})
}

// POST /admin/stores
func (h *StoreHandler) CreateLocation(c *gin.Context) {
	var req services.StoreLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	location, err := h.storeService.CreateLocation(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Country")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Store created",
		"store":   location,
	})
}

// PUT /admin/stores/:id
func (h *StoreHandler) UpdateLocation(c *gin.Context) {
	idStr := c.Param("id")
	locationID, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid store ID", nil)
		return
	}

	var req services.StoreLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	location, err := h.storeService.UpdateLocation(locationID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "country not found") {
			utils.NotFoundResponse(c, "Country")
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Store")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Store updated",
		"store":   location,
	})
}

// DELETE /admin/stores/:id
func (h *StoreHandler) DeleteLocation(c *gin.Context) {
	idStr := c.Param("id")
	locationID, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid store ID", nil)
		return
	}

	if err := h.storeService.DeleteLocation(locationID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Store")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Store deleted",
	})
}
