// internal/handlers/checkout.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CheckoutHandler struct {
	orderService *services.OrderService
}

func NewCheckoutHandler(orderService *services.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orderService,
	}
}

// POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.orderService.PlaceOrder(&req)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			utils.NotFoundResponse(c, "Product")
		case strings.Contains(msg, "expired"):
			utils.UnprocessableResponse(c, "CART_EXPIRED", msg, nil)
		case strings.Contains(msg, "insufficient stock") || strings.Contains(msg, "not available") ||
			strings.Contains(msg, "not supported") || strings.Contains(msg, "no items") ||
			strings.Contains(msg, "variation is required"):
			utils.UnprocessableResponse(c, "UNPROCESSABLE", msg, nil)
		case strings.Contains(msg, "payment initialization failed"):
			utils.ErrorResponse(c, 502, "PAYMENT_FAILED", msg, nil)
		default:
			utils.BadRequestResponse(c, msg, nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Order placed",
		"order":   result.Order,
		"payment": result.Payment,
	})
}

// POST /checkout/confirm
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.orderService.ConfirmPayment(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Order")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order":          order,
		"payment_status": order.PaymentStatus,
	})
}

// GET /orders/:number
//
// Guest order tracking. The customer email doubles as the access check, since
// the storefront has no accounts.
func (h *CheckoutHandler) TrackOrder(c *gin.Context) {
	number := c.Param("number")
	email := c.Query("email")
	if email == "" {
		utils.BadRequestResponse(c, "email query parameter is required", nil)
		return
	}

	order, err := h.orderService.GetOrderForCustomer(number, email)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Order")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order": order,
	})
}
