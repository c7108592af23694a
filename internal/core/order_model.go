package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order:
//
//	pending → confirmed → delivered
//	pending | confirmed → cancelled
//
// delivered and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the allowed moves out of each status. confirmed → pending
// lets staff undo a confirmation made by mistake.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: nil,
	OrderStatusCancelled: nil,
}

// Valid reports whether s is one of the four known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether the order no longer accepts field edits.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether from → to is allowed. Staying in place is always allowed.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	if s == to {
		return true
	}
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderSource records where an order was entered.
type OrderSource string

const (
	OrderSourceInternal OrderSource = "internal"
	OrderSourcePortal   OrderSource = "customer-portal"
)

// Order is a customer order. CustomerName and item prices are snapshots taken at creation.
type Order struct {
	ID              int             `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      int             `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	HarvestLocation string          `json:"harvest_location"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	Source          OrderSource     `json:"order_source"`
	DeliveryDate    Date            `json:"delivery_date"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is one line of an order or an invoice snapshot.
type OrderItem struct {
	ProductID    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderView is the read model of an order with its customer hydrated.
type OrderView struct {
	Order
	Customer  CustomerSummary `json:"customer"`
	InvoiceID *int            `json:"invoice_id,omitempty"`
}

// OrderLineInput is one requested line. PricePerUnit is required for internal
// orders and ignored for portal orders, whose prices come from the price list.
type OrderLineInput struct {
	Product      ProductRef       `json:"product" validate:"required"`
	Quantity     int              `json:"quantity" validate:"required,gte=1"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit" validate:"omitempty,gte=0"`
}

type CreateOrderInput struct {
	Customer        CustomerRef      `json:"customer" validate:"required"`
	Items           []OrderLineInput `json:"items" validate:"required,min=1,dive"`
	DeliveryDate    Date             `json:"delivery_date" validate:"required"`
	HarvestLocation string           `json:"harvest_location" validate:"max=40"`
	Notes           string           `json:"notes" validate:"max=2000"`
	Source          OrderSource      `json:"order_source" validate:"omitempty,oneof=internal customer-portal"`
}

// PublicLineInput is a portal order line; the price is always resolved server side.
type PublicLineInput struct {
	Product  ProductRef `json:"product" validate:"required"`
	Quantity int        `json:"quantity" validate:"required,gte=1"`
}

type PublicOrderInput struct {
	CustomerSlug string            `json:"customer_slug" validate:"required,max=120"`
	Items        []PublicLineInput `json:"items" validate:"required,min=1,dive"`
	DeliveryDate Date              `json:"delivery_date" validate:"required"`
	Notes        string            `json:"notes" validate:"max=2000"`
}

// UpdateOrderInput edits a non-terminal order. Nil fields are left unchanged;
// a non-nil Items replaces every line and re-prices the order.
type UpdateOrderInput struct {
	Items           []OrderLineInput `json:"items" validate:"omitempty,min=1,dive"`
	DeliveryDate    *Date            `json:"delivery_date"`
	HarvestLocation *string          `json:"harvest_location" validate:"omitempty,max=40"`
	Notes           *string          `json:"notes" validate:"omitempty,max=2000"`
}

type OrderFilter struct {
	CustomerID int
	Status     OrderStatus
	StartDate  *Date
	EndDate    *Date
	Page       int
	Limit      int
}

type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	Pagination Pagination  `json:"pagination"`
}

// OrderStats is the dashboard summary of order activity.
type OrderStats struct {
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	TodayOrders   int             `json:"today_orders"`
	WeeklyTotal   decimal.Decimal `json:"weekly_total"`
	WeeklyCount   int             `json:"weekly_count"`
}
