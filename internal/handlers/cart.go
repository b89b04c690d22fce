// internal/handlers/cart.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// CartHandler is the guest cart API. The cart token in the path is the only
// credential; there are no accounts on the storefront side.
type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// POST /cart
func (h *CartHandler) CreateCart(c *gin.Context) {
	cart, err := h.cartService.CreateCart()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"token":      cart.Token,
		"expires_at": cart.ExpiresAt,
	})
}

// GET /cart/:token
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Param("token"))
	if err != nil {
		h.cartError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cart": cart,
	})
}

// POST /cart/:token/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req services.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	cart, err := h.cartService.AddItem(c.Param("token"), &req)
	if err != nil {
		h.cartError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cart": cart,
	})
}

// PUT /cart/:token/items/:itemId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	cart, err := h.cartService.UpdateItem(c.Param("token"), itemID, &req)
	if err != nil {
		h.cartError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cart": cart,
	})
}

// DELETE /cart/:token/items/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	cart, err := h.cartService.RemoveItem(c.Param("token"), itemID)
	if err != nil {
		h.cartError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cart": cart,
	})
}

// DELETE /cart/:token
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Param("token")); err != nil {
		h.cartError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Cart cleared",
	})
}

// cartError maps cart service errors onto status codes. An expired cart is
// 410 so the storefront knows to start a fresh one.
func (h *CartHandler) cartError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "expired"):
		utils.ErrorResponse(c, http.StatusGone, "CART_EXPIRED", msg, nil)
	case strings.Contains(msg, "not found"):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", msg, nil)
	case strings.Contains(msg, "insufficient stock") || strings.Contains(msg, "not available") ||
		strings.Contains(msg, "variation"):
		utils.UnprocessableResponse(c, "UNPROCESSABLE", msg, nil)
	default:
		utils.InternalErrorResponse(c, msg)
	}
}
