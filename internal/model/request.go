package model

import (
	"time"

	"github.com/google/uuid"
)

// CardDetails carries card payment input. The full number is only used to
// derive the stored last-4 digits and is never persisted.
type CardDetails struct {
	Type   string `json:"type" validate:"required,oneof=debit credit"`
	Brand  string `json:"brand" validate:"required,oneof=VISA MASTERCARD"`
	Number string `json:"number" validate:"required,numeric,min=12,max=19"`
}

// CreateOrderItemRequest is a single requested line in an order creation.
type CreateOrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=100"`
}

// CreateOrderRequest is the payload for POST /api/orders.
type CreateOrderRequest struct {
	UserID         uuid.UUID                `json:"userId" validate:"required"`
	Email          string                   `json:"email" validate:"required,email,max=300"`
	FullName       string                   `json:"fullName" validate:"required,min=6,max=200"`
	Address        *string                  `json:"address,omitempty" validate:"omitempty,min=10,max=500"`
	DeliveryType   DeliveryType             `json:"deliveryType,omitempty" validate:"omitempty,oneof=home pickup"`
	GeoEnabled     bool                     `json:"geolocationEnabled,omitempty"`
	Latitude       *float64                 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64                 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	PaymentMethod  PaymentMethod            `json:"paymentMethod,omitempty" validate:"omitempty,oneof=card bank-transfer cash"`
	Card           *CardDetails             `json:"card,omitempty"`
	BankReference  *string                  `json:"bankReference,omitempty" validate:"omitempty,max=100"`
	CashOnDelivery bool                     `json:"cashOnDelivery,omitempty"`
	Items          []CreateOrderItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// ApplyDefaults fills the optional enum fields with their default values.
func (r *CreateOrderRequest) ApplyDefaults() {
	if r.DeliveryType == "" {
		r.DeliveryType = DeliveryHome
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = PaymentCard
	}
}

// CheckDeliveryRules enforces the cross-field delivery constraints that
// struct tags cannot express: enabled geolocation needs both coordinates,
// and home delivery without valid geolocation needs a shipping address.
func (r *CreateOrderRequest) CheckDeliveryRules() error {
	if r.GeoEnabled && (r.Latitude == nil || r.Longitude == nil) {
		return ValidationError("latitude and longitude are required when geolocation is enabled").
			WithDetails(map[string]any{"fields": []string{"latitude", "longitude"}})
	}
	if r.DeliveryType == DeliveryHome {
		hasGeo := r.GeoEnabled && r.Latitude != nil && r.Longitude != nil
		if !hasGeo && r.Address == nil {
			return ValidationError("address is required for home delivery without geolocation").
				WithDetails(map[string]any{"fields": []string{"address"}})
		}
	}
	return nil
}

// UpdateOrderRequest is the partial-update payload for PUT /api/orders/{id}.
// Nil fields are left untouched.
type UpdateOrderRequest struct {
	Status             *OrderStatus   `json:"status,omitempty" validate:"omitempty,oneof=in_process delayed delivered cancelled"`
	Address            *string        `json:"address,omitempty" validate:"omitempty,min=10,max=500"`
	DeliveryType       *DeliveryType  `json:"deliveryType,omitempty" validate:"omitempty,oneof=home pickup"`
	GeoEnabled         *bool          `json:"geolocationEnabled,omitempty"`
	Latitude           *float64       `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude          *float64       `json:"longitude,omitempty" validate:"omitempty,longitude"`
	PaymentMethod      *PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,oneof=card bank-transfer cash"`
	Card               *CardDetails   `json:"card,omitempty"`
	BankReference      *string        `json:"bankReference,omitempty" validate:"omitempty,max=100"`
	CashOnDelivery     *bool          `json:"cashOnDelivery,omitempty"`
	OriginalDeliveryAt *time.Time     `json:"originalDeliveryAt,omitempty"`
	DelayedDeliveryAt  *time.Time     `json:"delayedDeliveryAt,omitempty"`
}

// IsEmpty reports whether the request carries no recognized field at all.
func (r *UpdateOrderRequest) IsEmpty() bool {
	return r.Status == nil &&
		r.Address == nil &&
		r.DeliveryType == nil &&
		r.GeoEnabled == nil &&
		r.Latitude == nil &&
		r.Longitude == nil &&
		r.PaymentMethod == nil &&
		r.Card == nil &&
		r.BankReference == nil &&
		r.CashOnDelivery == nil &&
		r.OriginalDeliveryAt == nil &&
		r.DelayedDeliveryAt == nil
}

// TouchesDelivery reports whether the update changes any delivery parameter
// that feeds the shipping cost computation.
func (r *UpdateOrderRequest) TouchesDelivery() bool {
	return r.DeliveryType != nil || r.GeoEnabled != nil || r.Latitude != nil || r.Longitude != nil
}

// TransitionRequest is the payload for PUT /api/orders/{id}/status.
type TransitionRequest struct {
	Status            OrderStatus `json:"status" validate:"required,oneof=in_process delayed delivered cancelled"`
	Reason            *string     `json:"reason,omitempty" validate:"omitempty,min=1,max=500"`
	DelayedDeliveryAt *time.Time  `json:"delayedDeliveryAt,omitempty"`
}

// CancelOrderRequest is the payload for POST /api/orders/{id}/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// AddLineItemRequest is the payload for POST /api/orders/{id}/products.
// Name and price may be omitted when the product id resolves in the catalog;
// for unknown products both are required.
type AddLineItemRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	Quantity  int      `json:"quantity" validate:"required,min=1,max=100"`
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1,max=300"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Discount  *float64 `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Brand     *string  `json:"brand,omitempty" validate:"omitempty,min=1,max=100"`
	Model     *string  `json:"model,omitempty" validate:"omitempty,min=1,max=100"`
	Image     *string  `json:"image,omitempty" validate:"omitempty,url"`
}

// UpdateLineItemRequest is the partial-update payload for
// PUT /api/orders/{id}/products/{productID}.
type UpdateLineItemRequest struct {
	Quantity *int     `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Discount *float64 `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// IsEmpty reports whether no updatable field was supplied.
func (r *UpdateLineItemRequest) IsEmpty() bool {
	return r.Quantity == nil && r.Price == nil && r.Discount == nil
}

// Sort keys accepted by the order listing.
const (
	SortByDate   = "date"
	SortByTotal  = "total"
	SortByStatus = "status"
)

// ListOrdersQuery is the parsed query string of GET /api/orders.
type ListOrdersQuery struct {
	Page     int          `validate:"min=1"`
	Limit    int          `validate:"min=1,max=100"`
	UserID   *uuid.UUID   // admin-only override of the implicit self scope
	Status   *OrderStatus `validate:"omitempty,oneof=in_process delayed delivered cancelled"`
	DateFrom *time.Time
	DateTo   *time.Time
	Sort     string `validate:"oneof=date total status"`
	Order    string `validate:"oneof=asc desc"`
}

// DefaultListOrdersQuery returns the listing defaults: first page, 20 per
// page, newest first.
func DefaultListOrdersQuery() ListOrdersQuery {
	return ListOrdersQuery{Page: 1, Limit: 20, Sort: SortByDate, Order: "desc"}
}
