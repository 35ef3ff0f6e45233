// Package shipping computes delivery costs from the delivery parameters of
// an order. The computation is pure: validation of the inputs happens
// upstream in the request layer.
package shipping

import (
	"math"

	"ordersvc/internal/model"
)

// Reference point of the store used for distance-based pricing.
const (
	StoreLatitude  = 4.7110
	StoreLongitude = -74.0721
)

// Pricing constants in currency units.
const (
	// BaseFee is the fixed component of a geolocated home delivery.
	BaseFee = 10000.0
	// RatePerKm is charged per kilometre of great-circle distance.
	RatePerKm = 500.0
	// FlatFee applies to home deliveries without usable coordinates. It is
	// deliberately above the minimum geolocated fee to favour geolocation.
	FlatFee = 12500.0
)

const earthRadiusKm = 6371.0

// Cost returns the delivery cost for the given parameters, rounded to the
// nearest currency unit. Pickup is always free. Home deliveries are priced
// by distance when both coordinates are present and geolocation is enabled,
// and at the flat fallback fee otherwise.
func Cost(deliveryType model.DeliveryType, geoEnabled bool, lat, lon *float64) float64 {
	if deliveryType == model.DeliveryPickup {
		return 0
	}
	if geoEnabled && lat != nil && lon != nil {
		km := haversineKm(StoreLatitude, StoreLongitude, *lat, *lon)
		return math.Round(BaseFee + RatePerKm*km)
	}
	return FlatFee
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
