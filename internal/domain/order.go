package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// orderTransitions lists the statuses reachable from each status. Statuses
// without an entry are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// OrderStatuses returns every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is one cart line persisted at order submission.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`

	// Product is populated on reads with its current price, which may differ
	// from the price used for the order total.
	Product *Product `json:"product,omitempty" db:"-"`
}

// Order is a placed order with its shipping details.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderItems       []*OrderItem    `json:"orderItems" db:"-"`
	ShippingAddress1 string          `json:"shippingAddress1" db:"shipping_address1"`
	ShippingAddress2 string          `json:"shippingAddress2" db:"shipping_address2"`
	City             string          `json:"city" db:"city"`
	Postcode         string          `json:"postcode" db:"postcode"`
	Country          string          `json:"country" db:"country"`
	Phone            string          `json:"phone" db:"phone"`
	Status           OrderStatus     `json:"status" db:"status"`
	TotalPrice       decimal.Decimal `json:"totalPrice" db:"total_price"`
	UserID           uuid.UUID       `json:"userId" db:"user_id"`
	DateOrdered      time.Time       `json:"dateOrdered" db:"date_ordered"`

	User *UserSummary `json:"user,omitempty" db:"-"`
}

// Bounds of the order_items.quantity and orders.total_price columns.
const (
	MaxOrderQuantity = 10000
)

// MaxOrderTotal is the largest value DECIMAL(12,2) holds.
var MaxOrderTotal = decimal.RequireFromString("9999999999.99")

// CartLine is a product and quantity submitted when placing an order.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}
