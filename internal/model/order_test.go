package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLineItem_ComputeSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount float64
		quantity int
		want     float64
	}{
		{"No discount", 10.00, 0, 2, 20.00},
		{"Ten percent off", 20.00, 10, 1, 18.00},
		{"Full discount", 99.99, 100, 3, 0.00},
		{"Rounds to two decimals", 0.10, 33, 3, 0.20},
		{"Repeating decimal rounds", 9.99, 15, 7, 59.44},
		{"Single unit", 1234.56, 0, 1, 1234.56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			li := OrderLineItem{Price: tt.price, Discount: tt.discount, Quantity: tt.quantity}
			assert.Equal(t, tt.want, li.ComputeSubtotal())
		})
	}
}

// Float accumulation must not leak into subtotals: 0.1 * 3 in binary floats
// is 0.30000000000000004, the decimal path returns exactly 0.30.
func TestOrderLineItem_ComputeSubtotal_NoFloatDrift(t *testing.T) {
	li := OrderLineItem{Price: 0.1, Discount: 0, Quantity: 3}
	assert.Equal(t, 0.30, li.ComputeSubtotal())
}

func TestPrincipal_CanAccess(t *testing.T) {
	ownerID := uuid.New()

	owner := Principal{UserID: ownerID, Role: RoleCustomer}
	stranger := Principal{UserID: uuid.New(), Role: RoleCustomer}
	admin := Principal{UserID: uuid.New(), Role: RoleAdmin}

	assert.True(t, owner.CanAccess(ownerID))
	assert.False(t, stranger.CanAccess(ownerID))
	assert.True(t, admin.CanAccess(ownerID))
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleCustomer.IsValid())
	assert.False(t, Role("superuser").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestCreateOrderRequest_CheckDeliveryRules(t *testing.T) {
	lat, lon := 4.7110, -74.0721
	addr := "Calle 100 #15-20, Bogota"

	t.Run("Geolocation needs both coordinates", func(t *testing.T) {
		req := &CreateOrderRequest{DeliveryType: DeliveryHome, GeoEnabled: true, Latitude: &lat}
		err := req.CheckDeliveryRules()
		de := AsDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, ErrCodeValidation, de.Code)
	})

	t.Run("Home without geolocation needs address", func(t *testing.T) {
		req := &CreateOrderRequest{DeliveryType: DeliveryHome}
		err := req.CheckDeliveryRules()
		de := AsDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, ErrCodeValidation, de.Code)
	})

	t.Run("Home with address passes", func(t *testing.T) {
		req := &CreateOrderRequest{DeliveryType: DeliveryHome, Address: &addr}
		assert.NoError(t, req.CheckDeliveryRules())
	})

	t.Run("Home with full geolocation passes without address", func(t *testing.T) {
		req := &CreateOrderRequest{DeliveryType: DeliveryHome, GeoEnabled: true, Latitude: &lat, Longitude: &lon}
		assert.NoError(t, req.CheckDeliveryRules())
	})

	t.Run("Pickup passes without address", func(t *testing.T) {
		req := &CreateOrderRequest{DeliveryType: DeliveryPickup}
		assert.NoError(t, req.CheckDeliveryRules())
	})
}

func TestCreateOrderRequest_ApplyDefaults(t *testing.T) {
	req := &CreateOrderRequest{}
	req.ApplyDefaults()
	assert.Equal(t, DeliveryHome, req.DeliveryType)
	assert.Equal(t, PaymentCard, req.PaymentMethod)

	explicit := &CreateOrderRequest{DeliveryType: DeliveryPickup, PaymentMethod: PaymentCash}
	explicit.ApplyDefaults()
	assert.Equal(t, DeliveryPickup, explicit.DeliveryType)
	assert.Equal(t, PaymentCash, explicit.PaymentMethod)
}

func TestUpdateOrderRequest_IsEmpty(t *testing.T) {
	assert.True(t, (&UpdateOrderRequest{}).IsEmpty())

	addr := "Carrera 7 #71-21, Bogota"
	assert.False(t, (&UpdateOrderRequest{Address: &addr}).IsEmpty())

	status := StatusDelayed
	assert.False(t, (&UpdateOrderRequest{Status: &status}).IsEmpty())
}
