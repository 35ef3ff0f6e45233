package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryType selects how an order reaches the customer.
type DeliveryType string

const (
	DeliveryHome   DeliveryType = "home"
	DeliveryPickup DeliveryType = "pickup"
)

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentCash         PaymentMethod = "cash"
)

// Order represents one purchase transaction. Monetary amounts are stored
// rounded to 2 decimal places; Total always equals the sum of line-item
// subtotals plus ShippingCost.
type Order struct {
	ID                 uuid.UUID    `json:"id" db:"id"`
	UserID             uuid.UUID    `json:"userId" db:"user_id"`
	Email              string       `json:"email" db:"email"`
	FullName           string       `json:"fullName" db:"full_name"`
	Address            *string      `json:"address,omitempty" db:"address"`
	DeliveryType       DeliveryType `json:"deliveryType" db:"delivery_type"`
	GeoEnabled         bool         `json:"geolocationEnabled" db:"geolocation_enabled"`
	Latitude           *float64     `json:"latitude,omitempty" db:"latitude"`
	Longitude          *float64     `json:"longitude,omitempty" db:"longitude"`
	PaymentMethod      PaymentMethod `json:"paymentMethod" db:"payment_method"`
	CardType           *string      `json:"cardType,omitempty" db:"card_type"`
	CardBrand          *string      `json:"cardBrand,omitempty" db:"card_brand"`
	CardLast4          *string      `json:"cardLast4,omitempty" db:"card_last4"`
	BankReference      *string      `json:"bankReference,omitempty" db:"bank_reference"`
	CashOnDelivery     bool         `json:"cashOnDelivery" db:"cash_on_delivery"`
	ShippingCost       float64      `json:"shippingCost" db:"shipping_cost"`
	Total              float64      `json:"total" db:"total"`
	Status             OrderStatus  `json:"status" db:"status"`
	CreatedAt          time.Time    `json:"createdAt" db:"created_at"`
	OriginalDeliveryAt *time.Time   `json:"originalDeliveryAt,omitempty" db:"original_delivery_at"`
	DelayedDeliveryAt  *time.Time   `json:"delayedDeliveryAt,omitempty" db:"delayed_delivery_at"`

	Items []OrderLineItem `json:"items,omitempty" db:"-"`
}

// OrderLineItem is one product line within an order. Name, brand, model,
// image, price and discount are snapshotted from the catalog at insertion
// time and never re-synced.
type OrderLineItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Brand     string    `json:"brand" db:"brand"`
	Model     string    `json:"model" db:"model"`
	Image     string    `json:"image" db:"image"`
	Price     float64   `json:"price" db:"price"`
	Discount  float64   `json:"discount" db:"discount"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Subtotal  float64   `json:"subtotal" db:"-"`
}

// ComputeSubtotal returns price * quantity * (1 - discount/100) rounded to
// 2 decimal places. Decimal arithmetic avoids float accumulation drift.
func (li OrderLineItem) ComputeSubtotal() float64 {
	price := decimal.NewFromFloat(li.Price)
	qty := decimal.NewFromInt(int64(li.Quantity))
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(li.Discount).Div(decimal.NewFromInt(100)))
	sub, _ := price.Mul(qty).Mul(factor).Round(2).Float64()
	return sub
}

// OrderStatusHistory is one immutable audit record of a status transition.
type OrderStatusHistory struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	OrderID    uuid.UUID   `json:"-" db:"order_id"`
	FromStatus OrderStatus `json:"from" db:"from_status"`
	ToStatus   OrderStatus `json:"to" db:"to_status"`
	Reason     *string     `json:"reason,omitempty" db:"reason"`
	ChangedBy  uuid.UUID   `json:"changedBy" db:"changed_by"`
	ChangedAt  time.Time   `json:"changedAt" db:"changed_at"`
}
