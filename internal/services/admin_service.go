// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

type AdminDashboardStats struct {
	OrdersToday      int64            `json:"orders_today"`
	RevenueToday     float64          `json:"revenue_today"`
	OrdersThisMonth  int64            `json:"orders_this_month"`
	RevenueThisMonth float64          `json:"revenue_this_month"`
	OrderGrowth      float64          `json:"order_growth"`
	RevenueGrowth    float64          `json:"revenue_growth"`
	PendingOrders    int64            `json:"pending_orders"`
	TotalProducts    int64            `json:"total_products"`
	ActiveProducts   int64            `json:"active_products"`
	LowStockProducts int64            `json:"low_stock_products"`
	TopSellers       []TopSellerEntry `json:"top_sellers"`
	RecentOrders     []models.Order   `json:"recent_orders"`
}

type TopSellerEntry struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	SalesCount int       `json:"sales_count"`
}

type AuditLogFilter struct {
	utils.PaginationParams
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	CreatedAfter *time.Time
}

func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	// Order statistics
	s.db.Model(&models.Order{}).Where("placed_at >= ?", dayStart).Count(&stats.OrdersToday)
	s.db.Model(&models.Order{}).Where("placed_at >= ?", monthStart).Count(&stats.OrdersThisMonth)
	s.db.Model(&models.Order{}).
		Where("status IN ?", []models.OrderStatus{models.OrderStatusPending, models.OrderStatusPaid}).
		Count(&stats.PendingOrders)

	// Revenue statistics
	s.db.Model(&models.Order{}).
		Where("payment_status = ? AND placed_at >= ?", models.PaymentStatusPaid, dayStart).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.RevenueToday)

	s.db.Model(&models.Order{}).
		Where("payment_status = ? AND placed_at >= ?", models.PaymentStatusPaid, monthStart).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.RevenueThisMonth)

	// Catalog statistics
	s.db.Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.Model(&models.Product{}).Where("status = ?", models.ProductStatusActive).Count(&stats.ActiveProducts)

	threshold := s.config.Checkout.LowStockThreshold
	s.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Where(`(NOT EXISTS (SELECT 1 FROM product_variations v WHERE v.product_id = products.id AND v.deleted_at IS NULL) AND stock <= ?)
			OR EXISTS (SELECT 1 FROM product_variations v WHERE v.product_id = products.id AND v.deleted_at IS NULL AND v.stock <= ?)`,
			threshold, threshold).
		Count(&stats.LowStockProducts)

	// Growth calculations
	var lastMonthOrders int64
	s.db.Model(&models.Order{}).
		Where("placed_at >= ? AND placed_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthOrders)

	var lastMonthRevenue float64
	s.db.Model(&models.Order{}).
		Where("payment_status = ? AND placed_at >= ? AND placed_at < ?",
			models.PaymentStatusPaid, lastMonthStart, monthStart).
		Select("COALESCE(SUM(total), 0)").Scan(&lastMonthRevenue)

	if lastMonthOrders > 0 {
		stats.OrderGrowth = float64(stats.OrdersThisMonth-lastMonthOrders) / float64(lastMonthOrders) * 100
	}

	if lastMonthRevenue > 0 {
		stats.RevenueGrowth = (stats.RevenueThisMonth - lastMonthRevenue) / lastMonthRevenue * 100
	}

	// Top sellers
	if err := s.db.Model(&models.Product{}).
		Select("id AS product_id, name, slug, sales_count").
		Where("sales_count > 0").
		Order("sales_count DESC").
		Limit(5).
		Scan(&stats.TopSellers).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch top sellers: %w", err)
	}

	// Recent orders
	if err := s.db.Model(&models.Order{}).
		Order("placed_at DESC").
		Limit(5).
		Find(&stats.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent orders: %w", err)
	}

	return stats, nil
}

// Settings Management
func (s *AdminService) GetSettings() (map[string]models.AdminSettings, error) {
	var settings []models.AdminSettings
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	settingsMap := make(map[string]models.AdminSettings)
	for _, setting := range settings {
		key := fmt.Sprintf("%s.%s", setting.Category, setting.Key)
		settingsMap[key] = setting
	}

	return settingsMap, nil
}

func (s *AdminService) UpdateSetting(category, key string, value interface{}, dataType string, adminID uuid.UUID) error {
	var setting models.AdminSettings
	err := s.db.Where("category = ? AND key = ?", category, key).First(&setting).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Create new setting
		setting = models.AdminSettings{
			Category:  category,
			Key:       key,
			Value:     models.JSONB{"value": value},
			DataType:  dataType,
			UpdatedBy: &adminID,
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to create setting: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	} else {
		// Update existing setting
		setting.Value = models.JSONB{"value": value}
		setting.DataType = dataType
		setting.UpdatedBy = &adminID

		if err := s.db.Save(&setting).Error; err != nil {
			return fmt.Errorf("failed to update setting: %w", err)
		}

		go s.createAuditLog(adminID, "UPDATE_SETTING", "admin_setting", &setting.ID,
			map[string]interface{}{"category": category, "key": key, "value": value})
	}

	return nil
}

// Audit Logs
func (s *AdminService) GetAuditLogs(filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "action", "resource_type"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	// Execute query
	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}

// Helper methods
func (s *AdminService) createAuditLog(userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, newValues map[string]interface{}) {
	auditLog := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		NewValues:    models.JSONB(newValues),
	}

	s.db.Create(auditLog)
}
