// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	Number           string        `json:"number" gorm:"uniqueIndex;size:30;not null"`
	CustomerName     string        `json:"customer_name" gorm:"size:150;not null"`
	Email            string        `json:"email" gorm:"size:255;not null;index"`
	Phone            string        `json:"phone" gorm:"size:50"`
	ShippingAddress  JSONB         `json:"shipping_address" gorm:"type:jsonb;not null"`
	Subtotal         float64       `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DiscountTotal    float64       `json:"discount_total" gorm:"type:decimal(10,2);default:0"`
	ShippingFee      float64       `json:"shipping_fee" gorm:"type:decimal(10,2);default:0"`
	Total            float64       `json:"total" gorm:"type:decimal(10,2);not null"`
	Currency         string        `json:"currency" gorm:"size:3;default:'USD'"`
	Status           OrderStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentMethod    PaymentMethod `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentStatus    PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentReference string        `json:"payment_reference" gorm:"size:255"`
	Notes            string        `json:"notes" gorm:"type:text"`
	PlacedAt         time.Time     `json:"placed_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is an immutable snapshot of a purchased line. Prices and names are
// copied at checkout so later catalog edits never change past orders.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	VariationID     *uuid.UUID `json:"variation_id" gorm:"type:uuid"`
	Name            string     `json:"name" gorm:"size:255;not null"`
	SKU             string     `json:"sku" gorm:"size:100"`
	Attributes      JSONB      `json:"attributes" gorm:"type:jsonb"`
	UnitPrice       float64    `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	DiscountPercent float64    `json:"discount_percent" gorm:"type:decimal(5,2);default:0"`
	FinalUnitPrice  float64    `json:"final_unit_price" gorm:"type:decimal(10,2);not null"`
	Quantity        int        `json:"quantity" gorm:"not null"`
	LineTotal       float64    `json:"line_total" gorm:"type:decimal(10,2);not null"`
}

// orderTransitions is the allowed status lattice. Cancellation restores stock
// and is only reachable before shipment.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether the order status may move to next.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[o.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
