package shipping

import (
	"testing"

	"ordersvc/internal/model"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestCost_Pickup(t *testing.T) {
	assert.Equal(t, 0.0, Cost(model.DeliveryPickup, false, nil, nil))
	// Pickup ignores any coordinates that slipped through.
	assert.Equal(t, 0.0, Cost(model.DeliveryPickup, true, fptr(4.7), fptr(-74.1)))
}

func TestCost_HomeWithGeolocation(t *testing.T) {
	tests := []struct {
		name     string
		lat      float64
		lon      float64
		expected float64
		delta    float64
	}{
		{
			name:     "at the store",
			lat:      StoreLatitude,
			lon:      StoreLongitude,
			expected: BaseFee,
			delta:    0,
		},
		{
			name: "one kilometre north",
			// 1 km of latitude is roughly 1/111.194 degrees.
			lat:      StoreLatitude + 1.0/111.194,
			lon:      StoreLongitude,
			expected: BaseFee + RatePerKm,
			delta:    1,
		},
		{
			name:     "ten kilometres north",
			lat:      StoreLatitude + 10.0/111.194,
			lon:      StoreLongitude,
			expected: BaseFee + 10*RatePerKm,
			delta:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := Cost(model.DeliveryHome, true, fptr(tt.lat), fptr(tt.lon))
			assert.InDelta(t, tt.expected, cost, tt.delta)
			// Costs are rounded to whole currency units.
			assert.Equal(t, cost, float64(int64(cost)))
		})
	}
}

func TestCost_HomeWithoutGeolocation(t *testing.T) {
	assert.Equal(t, FlatFee, Cost(model.DeliveryHome, false, nil, nil))
	// Enabled flag without coordinates still falls back to the flat fee.
	assert.Equal(t, FlatFee, Cost(model.DeliveryHome, true, nil, nil))
	assert.Equal(t, FlatFee, Cost(model.DeliveryHome, true, fptr(4.7), nil))
}

func TestCost_FlatFeeAboveMinimumGeoFee(t *testing.T) {
	// Policy: the fallback fee must exceed the cheapest geolocated fee so
	// that sharing coordinates is always worthwhile.
	assert.Greater(t, FlatFee, BaseFee)
}
