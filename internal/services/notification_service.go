// internal/services/notification_service.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// NotificationService sends customer email and records dashboard
// notifications. Email is best-effort: callers fire it from goroutines and
// failures are logged, never surfaced to the customer.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Customer email

func (s *NotificationService) SendOrderConfirmation(order *models.Order) error {
	tmpl := s.getEmailTemplate("order_confirmation")

	data := map[string]interface{}{
		"CustomerName": order.CustomerName,
		"OrderNumber":  order.Number,
		"Items":        order.Items,
		"Subtotal":     formatAmount(order.Subtotal, order.Currency),
		"Discount":     formatAmount(order.DiscountTotal, order.Currency),
		"ShippingFee":  formatAmount(order.ShippingFee, order.Currency),
		"Total":        formatAmount(order.Total, order.Currency),
		"OrderURL":     fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.Number),
		"StoreName":    s.config.Email.FromName,
	}

	subject := "Order Confirmation - " + order.Number
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).WithField("order", order.Number).
			Warn("Failed to render order confirmation email")
		return fmt.Errorf("failed to render email template: %w", err)
	}

	if err := s.sendEmail(order.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("order", order.Number).
			Warn("Failed to send order confirmation email")
		return err
	}

	return nil
}

func (s *NotificationService) SendOrderShipped(order *models.Order) error {
	tmpl := s.getEmailTemplate("order_shipped")

	data := map[string]interface{}{
		"CustomerName": order.CustomerName,
		"OrderNumber":  order.Number,
		"OrderURL":     fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.Number),
		"StoreName":    s.config.Email.FromName,
	}

	subject := "Your Order Has Shipped - " + order.Number
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).WithField("order", order.Number).
			Warn("Failed to render shipping email")
		return fmt.Errorf("failed to render email template: %w", err)
	}

	if err := s.sendEmail(order.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("order", order.Number).
			Warn("Failed to send shipping email")
		return err
	}

	return nil
}

// Dashboard notifications

func (s *NotificationService) NotifyNewOrder(order *models.Order) error {
	notification := &models.AdminNotification{
		Type:                "new_order",
		Title:               "New Order " + order.Number,
		Message:             fmt.Sprintf("%s placed an order for %s", order.CustomerName, formatAmount(order.Total, order.Currency)),
		RelatedResourceType: "order",
		RelatedResourceID:   &order.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("order", order.Number).
			Warn("Failed to create order notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (s *NotificationService) NotifyLowStock(name, sku string, stock int) error {
	label := name
	if sku != "" {
		label = fmt.Sprintf("%s (%s)", name, sku)
	}

	notification := &models.AdminNotification{
		Type:    "low_stock",
		Title:   "Low Stock Warning",
		Message: fmt.Sprintf("%s is down to %d units", label, stock),
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).Warn("Failed to create low stock notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (s *NotificationService) ListNotifications(params utils.PaginationParams, unreadOnly bool) ([]models.AdminNotification, int64, error) {
	query := s.db.Model(&models.AdminNotification{})

	if unreadOnly {
		query = query.Where("status = ?", "unread")
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var notifications []models.AdminNotification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) MarkNotificationRead(id uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.AdminNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  "read",
			"read_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}

	return nil
}

// Helper methods

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("Email delivery skipped, SMTP not configured")
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.Email.FromEmail, s.config.Email.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.Email.SMTPHost, s.config.Email.SMTPPort,
		s.config.Email.SMTPUsername, s.config.Email.SMTPPassword)

	return d.DialAndSend(m)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"order_confirmation": {
			Subject: "Order Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order, {{.CustomerName}}!</h2>
	<p>Your order <strong>{{.OrderNumber}}</strong> has been received.</p>
	<table cellpadding="6">
		<tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th></tr>
		{{range .Items}}
		<tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">{{printf "%.2f" .LineTotal}}</td></tr>
		{{end}}
	</table>
	<p>
		Subtotal: {{.Subtotal}}<br>
		Discount: -{{.Discount}}<br>
		Shipping: {{.ShippingFee}}<br>
		<strong>Total: {{.Total}}</strong>
	</p>
	<a href="{{.OrderURL}}">View your order</a>
	<p>Best regards,<br>{{.StoreName}} Team</p>
</body>
</html>`,
		},
		"order_shipped": {
			Subject: "Your Order Has Shipped",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Good news, {{.CustomerName}}!</h2>
	<p>Your order <strong>{{.OrderNumber}}</strong> is on its way.</p>
	<a href="{{.OrderURL}}">Track your order</a>
	<p>Best regards,<br>{{.StoreName}} Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}

func formatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}
