package domain

import (
	"context"

	"github.com/paulmach/orb"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score

	// BBox is the provider's extent for the place, when it reports one.
	BBox    orb.Bound
	HasBBox bool
}

// Found reports whether the provider matched anything.
func (r GeocodingResult) Found() bool {
	return r.FormattedAddress != "" || r.Lat != 0 || r.Lon != 0
}

// Center returns the result position in [lon, lat] order.
func (r GeocodingResult) Center() orb.Point {
	return orb.Point{r.Lon, r.Lat}
}

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name to coordinates. An empty result with
	// a nil error means the provider found nothing.
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)
}
