// internal/services/notification_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/config"
)

func TestRenderTemplate(t *testing.T) {
	service := NewNotificationService(nil, &config.Config{})

	tmpl := service.getEmailTemplate("order_confirmation")
	body, err := service.renderTemplate(tmpl.Body, map[string]interface{}{
		"CustomerName": "Alex Morgan",
		"OrderNumber":  "LM-20260825-4F7KQ2",
		"Items": []map[string]interface{}{
			{"Name": "Aurora Lamp", "Quantity": 2, "LineTotal": 120.0},
		},
		"Subtotal":    "160.00 USD",
		"Discount":    "40.00 USD",
		"ShippingFee": "0.00 USD",
		"Total":       "120.00 USD",
		"OrderURL":    "https://shop.example.com/orders/LM-20260825-4F7KQ2",
		"StoreName":   "LumenMart",
	})

	require.NoError(t, err)
	assert.Contains(t, body, "Alex Morgan")
	assert.Contains(t, body, "LM-20260825-4F7KQ2")
	assert.Contains(t, body, "Aurora Lamp")
	assert.Contains(t, body, "120.00")
}

func TestRenderTemplateBadSyntax(t *testing.T) {
	service := NewNotificationService(nil, &config.Config{})

	_, err := service.renderTemplate("{{.Unclosed", nil)
	assert.Error(t, err)
}

func TestGetEmailTemplateFallback(t *testing.T) {
	service := NewNotificationService(nil, &config.Config{})

	tmpl := service.getEmailTemplate("no-such-template")
	assert.Equal(t, "Notification", tmpl.Subject)

	body, err := service.renderTemplate(tmpl.Body, map[string]interface{}{"Message": "hello"})
	require.NoError(t, err)
	assert.Contains(t, body, "hello")
}

func TestSendEmailSkipsWithoutSMTP(t *testing.T) {
	service := NewNotificationService(nil, &config.Config{})

	// No SMTP host configured: delivery is skipped, not failed.
	assert.NoError(t, service.sendEmail("customer@example.com", "Subject", "<p>body</p>"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "120.00 USD", formatAmount(120, "USD"))
	assert.Equal(t, "19.99 EUR", formatAmount(19.99, "EUR"))
	assert.Equal(t, "0.00 USD", formatAmount(0, "USD"))
}
