// internal/services/payment_service.go
package services

import (
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

// PaymentService is a thin wrapper around Stripe PaymentIntents. Order state
// stays in OrderService; this only talks to the payment provider.
type PaymentService struct {
	config *config.Config
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

func NewPaymentService(config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{config: config}
}

// CreatePaymentIntent opens a Stripe intent for the order total. The client
// completes the payment with the returned secret.
func (s *PaymentService) CreatePaymentIntent(order *models.Order) (*PaymentIntentResponse, error) {
	// Stripe wants the amount in the currency's smallest unit
	amountInCents := int64(math.Round(order.Total * 100))

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(order.Currency),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("order_number", order.Number)
	params.AddMetadata("email", order.Email)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

func (s *PaymentService) GetPaymentIntent(paymentIntentID string) (*stripe.PaymentIntent, error) {
	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return pi, nil
}

// RefundPayment refunds the full captured amount of a payment intent.
func (s *PaymentService) RefundPayment(paymentReference string) error {
	if paymentReference == "" {
		return nil
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentReference),
		Reason:        stripe.String("requested_by_customer"),
	}

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to process refund: %w", err)
	}

	return nil
}
