// internal/handlers/attribute.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// AttributeHandler manages the attribute dictionary: the named axes (Color,
// Size) and their allowed values that product variations are built from.
type AttributeHandler struct {
	attributeService *services.AttributeService
}

func NewAttributeHandler(attributeService *services.AttributeService) *AttributeHandler {
	return &AttributeHandler{
		attributeService: attributeService,
	}
}

// GET /admin/attributes
func (h *AttributeHandler) GetAttributes(c *gin.Context) {
	attributes, err := h.attributeService.ListAttributes()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"attributes": attributes,
	})
}

// GET /admin/attributes/:id
func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid attribute ID", nil)
		return
	}

	attribute, err := h.attributeService.GetAttribute(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Attribute")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"attribute": attribute,
	})
}

// POST /admin/attributes
func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	var req services.AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	attribute, err := h.attributeService.CreateAttribute(&req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   "Attribute created",
		"attribute": attribute,
	})
}

// PUT /admin/attributes/:id
func (h *AttributeHandler) UpdateAttribute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid attribute ID", nil)
		return
	}

	var req services.AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	attribute, err := h.attributeService.UpdateAttribute(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Attribute")
			return
		}
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "in use") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   "Attribute updated",
		"attribute": attribute,
	})
}

// DELETE /admin/attributes/:id
func (h *AttributeHandler) DeleteAttribute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid attribute ID", nil)
		return
	}

	if err := h.attributeService.DeleteAttribute(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Attribute")
			return
		}
		if strings.Contains(err.Error(), "in use") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Attribute deleted",
	})
}

// POST /admin/attributes/:id/values
func (h *AttributeHandler) AddValue(c *gin.Context) {
	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid attribute ID", nil)
		return
	}

	var req services.AttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	value, err := h.attributeService.AddValue(attributeID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Attribute")
			return
		}
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Value added",
		"value":   value,
	})
}

// PUT /admin/attributes/:id/values/:valueId
func (h *AttributeHandler) UpdateValue(c *gin.Context) {
	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid attribute ID", nil)
		return
	}

	valueID, err := uuid.Parse(c.Param("valueId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid value ID", nil)
		return
	}

	var req services.AttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	value, err := h.attributeService.UpdateValue(attributeID, valueID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Value")
			return
		}
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "in use") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Value updated",
		"value":   value,
	})
}

// DELETE /admin/attributes/:id/values/:valueId
func (h *AttributeHandler) DeleteValue(c *gin.Context) {
	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid attribute ID", nil)
		return
	}

	valueID, err := uuid.Parse(c.Param("valueId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid value ID", nil)
		return
	}

	if err := h.attributeService.DeleteValue(attributeID, valueID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Value")
			return
		}
		if strings.Contains(err.Error(), "in use") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Value deleted",
	})
}
