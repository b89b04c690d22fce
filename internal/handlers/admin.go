// internal/handlers/admin.go
package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type AdminHandler struct {
	adminService        *services.AdminService
	notificationService *services.NotificationService
}

func NewAdminHandler(adminService *services.AdminService, notificationService *services.NotificationService) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		notificationService: notificationService,
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.adminService.GetSettings()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"settings": settings,
	})
}

// PUT /admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	adminIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	adminID, err := uuid.Parse(adminIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid admin ID", nil)
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Update each setting; keys are "category.key"
	for key, value := range req {
		parts := strings.Split(key, ".")
		if len(parts) != 2 {
			continue // Skip invalid keys
		}

		category := parts[0]
		settingKey := parts[1]

		// Determine data type
		var dataType string
		switch value.(type) {
		case bool:
			dataType = "boolean"
		case float64:
			dataType = "float"
		case string:
			dataType = "string"
		default:
			dataType = "json"
		}

		if err := h.adminService.UpdateSetting(category, settingKey, value, dataType, adminID); err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Settings updated",
	})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	// Build filter parameters
	filter := services.AuditLogFilter{
		PaginationParams: params,
	}

	// Parse filters
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			filter.UserID = &userID
		}
	}

	if action := c.Query("action"); action != "" {
		filter.Action = action
	}

	if resourceType := c.Query("resource_type"); resourceType != "" {
		filter.ResourceType = resourceType
	}

	if createdAfter := c.Query("created_after"); createdAfter != "" {
		if t, err := time.Parse("2006-01-02", createdAfter); err == nil {
			filter.CreatedAfter = &t
		}
	}

	// Get audit logs
	logs, total, err := h.adminService.GetAuditLogs(filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/notifications
func (h *AdminHandler) GetNotifications(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.ListNotifications(params, unreadOnly)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(notifications, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	idStr := c.Param("id")
	notificationID, err := uuid.Parse(idStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid notification ID", nil)
		return
	}

	if err := h.notificationService.MarkNotificationRead(notificationID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Notification")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Notification marked as read",
	})
}
