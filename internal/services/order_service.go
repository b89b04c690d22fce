// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/storefront-backend/internal/cache"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// OrderService owns checkout and order management. Placing an order locks the
// affected stock rows, prices every line server-side and writes immutable
// item snapshots in one transaction.
type OrderService struct {
	db                  *gorm.DB
	config              *config.Config
	cache               *cache.Registry
	paymentService      *PaymentService
	notificationService *NotificationService
}

type CheckoutLine struct {
	ProductID   uuid.UUID  `json:"product_id" validate:"required"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity" validate:"required,min=1"`
}

type ShippingAddress struct {
	Line1       string `json:"line1" validate:"required,max=255"`
	Line2       string `json:"line2,omitempty" validate:"max=255"`
	City        string `json:"city" validate:"required,max=100"`
	Region      string `json:"region,omitempty" validate:"max=100"`
	PostalCode  string `json:"postal_code" validate:"required,max=20"`
	CountryCode string `json:"country_code" validate:"required,country_code"`
}

type CheckoutRequest struct {
	CustomerName    string               `json:"customer_name" validate:"required,min=2,max=150"`
	Email           string               `json:"email" validate:"required,email"`
	Phone           string               `json:"phone,omitempty" validate:"max=50"`
	ShippingAddress ShippingAddress      `json:"shipping_address" validate:"required"`
	CartToken       string               `json:"cart_token,omitempty"`
	Lines           []CheckoutLine       `json:"lines,omitempty" validate:"omitempty,dive"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" validate:"required,oneof=card cash_on_delivery"`
	Notes           string               `json:"notes,omitempty" validate:"max=2000"`
}

type CheckoutResult struct {
	Order   *models.Order          `json:"order"`
	Payment *PaymentIntentResponse `json:"payment,omitempty"`
}

type ConfirmPaymentRequest struct {
	OrderNumber     string `json:"order_number" validate:"required"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending paid processing shipped delivered cancelled"`
	Note   string             `json:"note,omitempty" validate:"max=2000"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
}

func NewOrderService(db *gorm.DB, cfg *config.Config, registry *cache.Registry,
	paymentService *PaymentService, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		config:              cfg,
		cache:               registry,
		paymentService:      paymentService,
		notificationService: notificationService,
	}
}

func (s *OrderService) PlaceOrder(req *CheckoutRequest) (*CheckoutResult, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.verifyCountry(req.ShippingAddress.CountryCode); err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(req)
	if err != nil {
		return nil, err
	}

	number, err := utils.GenerateOrderNumber(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &models.Order{
		Number:       number,
		CustomerName: req.CustomerName,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		ShippingAddress: models.JSONB{
			"line1":        req.ShippingAddress.Line1,
			"line2":        req.ShippingAddress.Line2,
			"city":         req.ShippingAddress.City,
			"region":       req.ShippingAddress.Region,
			"postal_code":  req.ShippingAddress.PostalCode,
			"country_code": req.ShippingAddress.CountryCode,
		},
		Currency:      s.config.Checkout.Currency,
		Status:        models.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		Notes:         req.Notes,
		PlacedAt:      time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		items, subtotal, total, err := s.buildItems(tx, lines)
		if err != nil {
			return err
		}

		order.Subtotal = subtotal
		order.DiscountTotal = models.RoundCents(subtotal - total)
		order.ShippingFee = s.shippingFee(total)
		order.Total = models.RoundCents(total + order.ShippingFee)

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items

		// The cart dies with the checkout, inside the same transaction
		if req.CartToken != "" {
			if err := s.deleteCart(tx, req.CartToken); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.ResourceProducts)

	result := &CheckoutResult{Order: order}

	if req.PaymentMethod == models.PaymentMethodCard {
		payment, err := s.paymentService.CreatePaymentIntent(order)
		if err != nil {
			// The order stays pending; the client can retry the payment
			logrus.WithError(err).WithField("order", order.Number).
				Warn("Failed to create payment intent")
			return nil, errors.New("payment initialization failed")
		}

		order.PaymentReference = payment.PaymentID
		if err := s.db.Model(order).Update("payment_reference", payment.PaymentID).Error; err != nil {
			return nil, fmt.Errorf("failed to store payment reference: %w", err)
		}

		result.Payment = payment
	} else {
		// Cash on delivery confirms immediately
		go s.notificationService.SendOrderConfirmation(order)
	}

	go s.notificationService.NotifyNewOrder(order)
	go s.checkLowStock(order.Items)

	return result, nil
}

// ConfirmPayment reads the intent state from Stripe and settles the order.
func (s *OrderService) ConfirmPayment(req *ConfirmPaymentRequest) (*models.Order, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, err := s.GetOrderByNumber(req.OrderNumber)
	if err != nil {
		return nil, err
	}

	if order.PaymentReference != req.PaymentIntentID {
		return nil, errors.New("payment intent does not belong to this order")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return order, nil
	}

	pi, err := s.paymentService.GetPaymentIntent(req.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		updates := map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
		}
		if order.CanTransitionTo(models.OrderStatusPaid) {
			updates["status"] = models.OrderStatusPaid
		}
		if err := s.db.Model(order).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update order: %w", err)
		}
		order.PaymentStatus = models.PaymentStatusPaid
		if status, ok := updates["status"].(models.OrderStatus); ok {
			order.Status = status
		}

		go s.notificationService.SendOrderConfirmation(order)

	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusProcessing:
		// Not settled yet, nothing to record

	default:
		if err := s.db.Model(order).Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
			return nil, fmt.Errorf("failed to update order: %w", err)
		}
		order.PaymentStatus = models.PaymentStatusFailed
	}

	return order, nil
}

func (s *OrderService) GetOrder(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &order, nil
}

func (s *OrderService) GetOrderByNumber(number string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Where("number = ?", number).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &order, nil
}

// GetOrderForCustomer is the guest tracking lookup: the order number alone is
// guessable, so the customer email must match too.
func (s *OrderService) GetOrderForCustomer(number, email string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Where("number = ? AND email = ?", number, strings.ToLower(email)).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &order, nil
}

func (s *OrderService) SearchOrders(params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}

	if params.DateFrom != nil {
		query = query.Where("placed_at >= ?", *params.DateFrom)
	}

	if params.DateTo != nil {
		query = query.Where("placed_at <= ?", *params.DateTo)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(email) LIKE ? OR LOWER(customer_name) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"placed_at", "created_at", "total", "status", "number"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	// Execute query
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// UpdateOrderStatus moves an order along the status lattice. Cancelling
// restores stock and refunds captured payments.
func (s *OrderService) UpdateOrderStatus(id uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("order not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !order.CanTransitionTo(req.Status) {
			return fmt.Errorf("invalid status transition from %s to %s", order.Status, req.Status)
		}

		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		updates := map[string]interface{}{"status": req.Status}
		if req.Note != "" {
			updates["notes"] = appendNote(order.Notes, req.Note)
		}

		if req.Status == models.OrderStatusCancelled {
			if err := s.restoreStock(tx, order.Items); err != nil {
				return err
			}

			if order.PaymentStatus == models.PaymentStatusPaid {
				if err := s.paymentService.RefundPayment(order.PaymentReference); err != nil {
					return err
				}
				updates["payment_status"] = models.PaymentStatusRefunded
			}
		}

		if req.Status == models.OrderStatusPaid {
			updates["payment_status"] = models.PaymentStatusPaid
		}

		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status == models.OrderStatusCancelled {
		s.cache.Invalidate(cache.ResourceProducts)
	}

	updated, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	if req.Status == models.OrderStatusShipped {
		go s.notificationService.SendOrderShipped(updated)
	}

	return updated, nil
}

// Helper methods

func (s *OrderService) verifyCountry(code string) error {
	var count int64
	err := s.db.Model(&models.Country{}).
		Where("code = ? AND enabled = ?", code, true).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return errors.New("shipping country is not supported")
	}

	return nil
}

// resolveLines takes the request's explicit lines or the referenced cart's
// items, merging duplicate product+variation pairs.
func (s *OrderService) resolveLines(req *CheckoutRequest) ([]CheckoutLine, error) {
	lines := req.Lines

	if req.CartToken != "" {
		var cart models.Cart
		err := s.db.Where("token = ?", req.CartToken).Preload("Items").First(&cart).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("cart not found")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if cart.Expired(time.Now()) {
			return nil, errors.New("cart has expired")
		}

		lines = make([]CheckoutLine, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, CheckoutLine{
				ProductID:   item.ProductID,
				VariationID: item.VariationID,
				Quantity:    item.Quantity,
			})
		}
	}

	if len(lines) == 0 {
		return nil, errors.New("order has no items")
	}

	return mergeLines(lines), nil
}

func mergeLines(lines []CheckoutLine) []CheckoutLine {
	merged := make([]CheckoutLine, 0, len(lines))

	for _, line := range lines {
		found := false
		for i := range merged {
			sameVariation := (merged[i].VariationID == nil && line.VariationID == nil) ||
				(merged[i].VariationID != nil && line.VariationID != nil && *merged[i].VariationID == *line.VariationID)
			if merged[i].ProductID == line.ProductID && sameVariation {
				merged[i].Quantity += line.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, line)
		}
	}

	// Stable lock order across concurrent checkouts
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].ProductID != merged[j].ProductID {
			return merged[i].ProductID.String() < merged[j].ProductID.String()
		}
		a, b := "", ""
		if merged[i].VariationID != nil {
			a = merged[i].VariationID.String()
		}
		if merged[j].VariationID != nil {
			b = merged[j].VariationID.String()
		}
		return a < b
	})

	return merged
}

// buildItems locks each line's stock row, validates availability, decrements
// stock and returns the priced snapshots. Runs inside the checkout
// transaction.
func (s *OrderService) buildItems(tx *gorm.DB, lines []CheckoutLine) ([]models.OrderItem, float64, float64, error) {
	items := make([]models.OrderItem, 0, len(lines))
	var subtotal, total float64

	for _, line := range lines {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, 0, errors.New("product not found")
			}
			return nil, 0, 0, fmt.Errorf("database error: %w", err)
		}

		if product.Status != models.ProductStatusActive {
			return nil, 0, 0, fmt.Errorf("product %s is not available", product.Name)
		}

		var variation *models.ProductVariation
		if line.VariationID != nil {
			var v models.ProductVariation
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND product_id = ?", *line.VariationID, line.ProductID).
				First(&v).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, 0, 0, errors.New("variation not found")
				}
				return nil, 0, 0, fmt.Errorf("database error: %w", err)
			}
			variation = &v
		} else {
			var variationCount int64
			if err := tx.Model(&models.ProductVariation{}).
				Where("product_id = ?", line.ProductID).
				Count(&variationCount).Error; err != nil {
				return nil, 0, 0, fmt.Errorf("database error: %w", err)
			}
			if variationCount > 0 {
				return nil, 0, 0, fmt.Errorf("variation is required for product %s", product.Name)
			}
		}

		if stockFor(&product, variation) < line.Quantity {
			return nil, 0, 0, fmt.Errorf("insufficient stock for %s", product.Name)
		}

		if err := s.decrementStock(tx, &product, variation, line.Quantity); err != nil {
			return nil, 0, 0, err
		}

		unit := product.Price
		discount := product.DiscountPercent
		sku := ""
		var attributes models.JSONB
		if variation != nil {
			unit = variation.UnitPrice(&product)
			discount = variation.Discount(&product)
			sku = variation.SKU
			attributes = variation.Attributes
		}

		finalUnit := models.DiscountedPrice(unit, discount)
		lineTotal := models.RoundCents(finalUnit * float64(line.Quantity))

		items = append(items, models.OrderItem{
			ProductID:       product.ID,
			VariationID:     line.VariationID,
			Name:            product.Name,
			SKU:             sku,
			Attributes:      attributes,
			UnitPrice:       models.RoundCents(unit),
			DiscountPercent: discount,
			FinalUnitPrice:  finalUnit,
			Quantity:        line.Quantity,
			LineTotal:       lineTotal,
		})

		subtotal += models.RoundCents(models.RoundCents(unit) * float64(line.Quantity))
		total += lineTotal
	}

	return items, models.RoundCents(subtotal), models.RoundCents(total), nil
}

// decrementStock guards against concurrent oversell at the database level: the
// UPDATE only applies while enough stock remains.
func (s *OrderService) decrementStock(tx *gorm.DB, product *models.Product, variation *models.ProductVariation, quantity int) error {
	if variation != nil {
		result := tx.Model(&models.ProductVariation{}).
			Where("id = ? AND stock >= ?", variation.ID, quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to update stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("insufficient stock for %s", product.Name)
		}
	} else {
		result := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", product.ID, quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to update stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("insufficient stock for %s", product.Name)
		}
	}

	if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
		UpdateColumn("sales_count", gorm.Expr("sales_count + ?", quantity)).Error; err != nil {
		return fmt.Errorf("failed to update sales count: %w", err)
	}

	return nil
}

func (s *OrderService) restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		if item.VariationID != nil {
			if err := tx.Model(&models.ProductVariation{}).Where("id = ?", *item.VariationID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		} else {
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			UpdateColumn("sales_count", gorm.Expr("sales_count - ?", item.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to update sales count: %w", err)
		}
	}

	return nil
}

func (s *OrderService) deleteCart(tx *gorm.DB, token string) error {
	var cart models.Cart
	if err := tx.Where("token = ?", token).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := tx.Where("cart_id = ?", cart.ID).Unscoped().Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	if err := tx.Unscoped().Delete(&cart).Error; err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

func (s *OrderService) shippingFee(total float64) float64 {
	if total >= s.config.Checkout.FreeShippingThreshold {
		return 0
	}
	return models.RoundCents(s.config.Checkout.ShippingFee)
}

func (s *OrderService) checkLowStock(items []models.OrderItem) {
	threshold := s.config.Checkout.LowStockThreshold

	for _, item := range items {
		if item.VariationID != nil {
			var variation models.ProductVariation
			if err := s.db.First(&variation, *item.VariationID).Error; err != nil {
				continue
			}
			if variation.Stock <= threshold {
				s.notificationService.NotifyLowStock(item.Name, item.SKU, variation.Stock)
			}
		} else {
			var product models.Product
			if err := s.db.First(&product, item.ProductID).Error; err != nil {
				continue
			}
			if product.Stock <= threshold {
				s.notificationService.NotifyLowStock(item.Name, "", product.Stock)
			}
		}
	}
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
